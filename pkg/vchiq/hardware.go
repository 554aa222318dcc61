//go:build linux

// Package vchiq drives the VideoCore message queue on Raspberry Pi boards
// through /dev/vchiq and exposes its CEC service as a cec.Connection.
package vchiq

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/cecvol/pkg/cec"
)

// DefaultDevicePath is the character device exposed by the vchiq driver.
const DefaultDevicePath = "/dev/vchiq"

const (
	version               = 8
	versionMin            = 3
	versionLibVersion     = 7
	versionCloseDelivered = 7

	completionBatch = 8
	msgbufCount     = 8
	msgHeaderSize   = 8
)

const (
	svcTVClient = iota
	svcTVNotify
	svcCECClient
	svcCECNotify
	serviceCount
)

var serviceNames = [serviceCount]string{
	svcTVClient:  "TVHS",
	svcTVNotify:  "TVNT",
	svcCECClient: "CECS",
	svcCECNotify: "CECN",
}

var (
	initMu      sync.Mutex
	initialized bool
)

// fourcc packs a four-character service name, first character highest.
func fourcc(name string) int32 {
	return int32(uint32(name[0])<<24 | uint32(name[1])<<16 | uint32(name[2])<<8 | uint32(name[3]))
}

type service struct {
	name   string
	handle uint32
	signal *Signal

	// driver records stay on the heap for the lifetime of the service
	create createServiceArgs
	deq    dequeueMessageArgs
}

// HardwareInterface owns the open vchiq device, its four services and the
// goroutines that drain them. Only one may exist per process.
type HardwareInterface struct {
	file *os.File
	fd   uintptr

	config            driverConfig
	configArgs        getConfigArgs
	useCloseDelivered bool

	svcMu    sync.RWMutex
	services [serviceCount]*service

	// cmdMu serializes command/reply exchanges on the CEC client service
	// and guards the scratch records below.
	cmdMu    sync.Mutex
	cmdWord  [4]byte
	cmdParam [32]byte
	cmdReply [4]byte
	elements [2]element
	queue    queueMessageArgs

	cbMu   sync.Mutex
	rxCb   func(cec.Command)
	txCb   func(cec.Command)
	hdmiCb func(HDMIStatus)

	// completion thread state, only touched by completionLoop
	completions [completionBatch]completionData
	msgbufs     [msgbufCount]unsafe.Pointer
	arena       [msgbufCount][]byte
	await       awaitCompletionArgs

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open connects to the driver at path and creates the TV and CEC services.
// A second call in the same process returns ErrAlreadyInitialized.
func Open(path string) (*HardwareInterface, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil, ErrAlreadyInitialized
	}
	if path == "" {
		path = DefaultDevicePath
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	h := &HardwareInterface{file: file, fd: file.Fd()}
	if err := h.init(); err != nil {
		file.Close()
		return nil, err
	}

	initialized = true
	log.Info().
		Str("path", path).
		Int16("version", h.config.version).
		Int32("max_msg_size", h.config.maxMsgSize).
		Msg("VCHIQ interface ready")
	return h, nil
}

func (h *HardwareInterface) init() error {
	if err := h.getConfig(); err != nil {
		return err
	}
	if err := checkVersion(h.config.version, h.config.versionMin); err != nil {
		return err
	}

	if h.config.version >= versionLibVersion {
		if _, err := ioctl(h.fd, iocLibVersion, version); err != nil {
			return fmt.Errorf("lib version: %w", err)
		}
	}
	h.useCloseDelivered = h.config.version >= versionCloseDelivered

	if _, err := ioctl(h.fd, iocConnect, 0); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	bufSize := int(h.config.maxMsgSize) + msgHeaderSize
	for i := range h.arena {
		h.arena[i] = make([]byte, bufSize)
	}
	h.await = awaitCompletionArgs{
		count:      completionBatch,
		buf:        unsafe.Pointer(&h.completions[0]),
		msgbufsize: uint32(bufSize),
		msgbufs:    unsafe.Pointer(&h.msgbufs[0]),
	}

	h.wg.Add(1)
	go h.completionLoop()

	for i, name := range serviceNames {
		svc, err := h.createService(i, name)
		if err != nil {
			h.shutdown()
			return err
		}
		h.svcMu.Lock()
		h.services[i] = svc
		h.svcMu.Unlock()
	}

	h.wg.Add(2)
	go h.tvNotifyLoop()
	go h.cecNotifyLoop()
	return nil
}

func checkVersion(driverVersion, driverVersionMin int16) error {
	if driverVersion < versionMin || driverVersionMin > version {
		return fmt.Errorf("%w: driver %d (min %d), library %d (min %d)",
			ErrIncompatibleDriver, driverVersion, driverVersionMin, version, versionMin)
	}
	return nil
}

func (h *HardwareInterface) getConfig() error {
	h.configArgs = getConfigArgs{
		configSize: uint32(unsafe.Sizeof(h.config)),
		pconfig:    unsafe.Pointer(&h.config),
	}
	if _, err := ioctlPtr(h.fd, iocGetConfig, unsafe.Pointer(&h.configArgs)); err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	return nil
}

// createService opens a VCHI service and releases it so it stays idle
// until a command uses it.
func (h *HardwareInterface) createService(index int, name string) (*service, error) {
	svc := &service{name: name, signal: NewSignal()}
	svc.create = createServiceArgs{
		params: serviceParams{
			fourcc:     fourcc(name),
			userdata:   uintptr(index + 1),
			version:    1,
			versionMin: 1,
		},
		isOpen: 1,
		isVCHI: 1,
	}
	if _, err := ioctlPtr(h.fd, iocCreateService, unsafe.Pointer(&svc.create)); err != nil {
		return nil, fmt.Errorf("create service %s: %w", name, err)
	}
	svc.handle = svc.create.handle

	if _, err := ioctl(h.fd, iocReleaseService, uintptr(svc.handle)); err != nil {
		return nil, fmt.Errorf("release service %s: %w", name, err)
	}

	log.Debug().Str("service", name).Uint32("handle", svc.handle).Msg("VCHIQ service created")
	return svc, nil
}

// serviceFor maps a completion's userdata back to its service.
func (h *HardwareInterface) serviceFor(userdata uintptr) *service {
	i := int(userdata) - 1
	if i < 0 || i >= serviceCount {
		return nil
	}
	h.svcMu.RLock()
	defer h.svcMu.RUnlock()
	return h.services[i]
}

func (h *HardwareInterface) refillMsgbufs() {
	for h.await.msgbufcount < msgbufCount {
		i := h.await.msgbufcount
		h.msgbufs[i] = unsafe.Pointer(&h.arena[i][0])
		h.await.msgbufcount++
	}
}

// completionLoop waits for driver completions and wakes the matching
// service. It exits when the driver reports nothing or fails.
func (h *HardwareInterface) completionLoop() {
	defer h.wg.Done()

	for {
		h.refillMsgbufs()
		h.await.count = completionBatch

		n, err := ioctlPtr(h.fd, iocAwaitCompletion, unsafe.Pointer(&h.await))
		if err != nil {
			if !h.closed.Load() {
				log.Error().Err(err).Msg("VCHIQ await completion failed")
			}
			return
		}
		if int(n) <= 0 {
			log.Debug().Msg("VCHIQ completion thread exiting")
			return
		}

		for i := 0; i < int(n) && i < completionBatch; i++ {
			c := h.completions[i]
			svc := h.serviceFor(c.serviceUserdata)
			if svc == nil {
				log.Warn().Uint64("userdata", uint64(c.serviceUserdata)).Msg("Completion for unknown service")
				continue
			}

			svc.signal.Notify()

			if c.reason == reasonServiceClosed && h.useCloseDelivered {
				if _, err := ioctl(h.fd, iocCloseDelivered, uintptr(svc.handle)); err != nil {
					log.Warn().Err(err).Str("service", svc.name).Msg("Close delivered failed")
				}
			}
		}
	}
}

// dequeue reads one pending message from svc without blocking. It returns
// EAGAIN when nothing is queued. Callers must not dequeue the same service
// concurrently.
func (h *HardwareInterface) dequeue(svc *service, buf []byte) (int, error) {
	svc.deq = dequeueMessageArgs{
		handle:  svc.handle,
		bufsize: uint32(len(buf)),
		buf:     unsafe.Pointer(&buf[0]),
	}
	n, err := ioctlPtr(h.fd, iocDequeueMessage, unsafe.Pointer(&svc.deq))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (h *HardwareInterface) shutdown() {
	h.closed.Store(true)
	for _, svc := range h.services {
		if svc != nil {
			svc.signal.Close()
		}
	}
	if _, err := ioctl(h.fd, iocShutdown, 0); err != nil {
		log.Warn().Err(err).Msg("VCHIQ shutdown failed")
	}
}

// Close shuts the driver connection down. The process-wide initialization
// flag is not reset, so a later Open still fails.
func (h *HardwareInterface) Close() error {
	var err error
	h.closeOnce.Do(func() {
		for _, svc := range h.services {
			if svc == nil {
				continue
			}
			if _, cerr := ioctl(h.fd, iocCloseService, uintptr(svc.handle)); cerr != nil {
				log.Debug().Err(cerr).Str("service", svc.name).Msg("Close service failed")
			}
		}
		h.shutdown()
		err = h.file.Close()
		log.Info().Msg("VCHIQ interface closed")
	})
	return err
}
