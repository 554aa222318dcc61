package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether the service has a working connection to the HDMI-CEC bus"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_tv_state",
			mcp.WithDescription("Get the TV's power state and active input as tracked from bus traffic"),
		),
		s.handleGetTVState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_tv_state",
			mcp.WithDescription("Apply several TV changes at once. Properties are validated against the TV's state schema and applied in the order power, volume_steps, mute, input."),
			mcp.WithObject("state",
				mcp.Required(),
				mcp.Description(`State to apply (e.g. {"power": "on", "input": "HDMI 2"})`),
			),
		),
		s.handleSetTVState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_power",
			mcp.WithDescription("Turn the TV on or put it in standby"),
			mcp.WithBoolean("on",
				mcp.Required(),
				mcp.Description("true to turn on, false for standby"),
			),
		),
		s.handleSetPower,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("change_volume",
			mcp.WithDescription("Press volume up or down a number of times"),
			mcp.WithNumber("steps",
				mcp.Required(),
				mcp.Description("Key presses; positive raises the volume, negative lowers it (-50 to 50)"),
			),
		),
		s.handleChangeVolume,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_mute",
			mcp.WithDescription("Toggle mute on the TV"),
			mcp.WithBoolean("mute",
				mcp.Description("Requested mute state (the TV only supports toggling)"),
			),
		),
		s.handleSetMute,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_input",
			mcp.WithDescription("Switch the TV to an HDMI input"),
			mcp.WithString("input",
				mcp.Required(),
				mcp.Description(`Input name such as "HDMI 2" or "3"`),
			),
		),
		s.handleSetInput,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List the TV and every device seen on the HDMI-CEC bus with their current state"),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get a single bus device by logical role (tv, playback1, ...) or reported name"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Logical role or OSD name"),
			),
		),
		s.handleGetDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("poll_devices",
			mcp.WithDescription("Ask every device on the bus for its address, name and power status"),
		),
		s.handlePollDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("send_raw_frame",
			mcp.WithDescription("Transmit a raw HDMI-CEC frame given as hex bytes"),
			mcp.WithString("frame",
				mcp.Required(),
				mcp.Description(`Frame bytes such as "4f:82:10:00" (header, opcode, operands)`),
			),
		),
		s.handleSendRawFrame,
	)
}
