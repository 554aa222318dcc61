//go:build linux

package vchiq

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocMagic = 0xc4
)

// ioc builds a request number the way the kernel's _IOC macro does.
func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | iocMagic<<8 | nr
}

// Driver-facing records. Field order and widths mirror the kernel's
// vchiq_ioctl.h; pointer-sized fields follow the host ABI so the request
// sizes below are right on both 32- and 64-bit builds.

type serviceParams struct {
	fourcc     int32
	callback   uintptr
	userdata   uintptr
	version    int16
	versionMin int16
}

type createServiceArgs struct {
	params serviceParams
	isOpen int32
	isVCHI int32
	handle uint32 // out
}

type element struct {
	data unsafe.Pointer
	size uint32
}

type queueMessageArgs struct {
	handle   uint32
	count    uint32
	elements unsafe.Pointer
}

type completionData struct {
	reason          int32
	header          uintptr
	serviceUserdata uintptr
	bulkUserdata    uintptr
}

type awaitCompletionArgs struct {
	count       uint32
	buf         unsafe.Pointer
	msgbufsize  uint32
	msgbufcount uint32 // in/out
	msgbufs     unsafe.Pointer
}

type dequeueMessageArgs struct {
	handle   uint32
	blocking int32
	bufsize  uint32
	buf      unsafe.Pointer
}

type getConfigArgs struct {
	configSize uint32
	pconfig    unsafe.Pointer
}

type driverConfig struct {
	maxMsgSize          int32
	bulkThreshold       int32
	maxOutstandingBulks int32
	maxServices         int32
	version             int16
	versionMin          int16
}

var (
	iocConnect         = ioc(iocNone, 0, 0)
	iocShutdown        = ioc(iocNone, 1, 0)
	iocCreateService   = ioc(iocRead|iocWrite, 2, unsafe.Sizeof(createServiceArgs{}))
	iocQueueMessage    = ioc(iocWrite, 4, unsafe.Sizeof(queueMessageArgs{}))
	iocAwaitCompletion = ioc(iocRead|iocWrite, 7, unsafe.Sizeof(awaitCompletionArgs{}))
	iocDequeueMessage  = ioc(iocRead|iocWrite, 8, unsafe.Sizeof(dequeueMessageArgs{}))
	iocGetConfig       = ioc(iocRead|iocWrite, 10, unsafe.Sizeof(getConfigArgs{}))
	iocCloseService    = ioc(iocNone, 11, 0)
	iocUseService      = ioc(iocNone, 12, 0)
	iocReleaseService  = ioc(iocNone, 13, 0)
	iocLibVersion      = ioc(iocNone, 16, 0)
	iocCloseDelivered  = ioc(iocNone, 17, 0)
)

// Completion reasons reported by await completion.
const (
	reasonServiceOpened int32 = iota
	reasonServiceClosed
	reasonMessageAvailable
	reasonBulkTransmitDone
	reasonBulkReceiveDone
	reasonBulkTransmitAborted
	reasonBulkReceiveAborted
)

// retryOnEINTR repeats call while it fails with EINTR.
func retryOnEINTR(call func() (uintptr, error)) (uintptr, error) {
	for {
		v, err := call()
		if err == unix.EINTR {
			continue
		}
		return v, err
	}
}

// rawIoctl issues one ioctl. Tests replace it with a fake driver.
var rawIoctl = func(fd, request, arg uintptr) (uintptr, error) {
	v, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, arg)
	if errno != 0 {
		return 0, errno
	}
	return v, nil
}

// ioctl issues request with an integer argument.
func ioctl(fd, request, arg uintptr) (uintptr, error) {
	return retryOnEINTR(func() (uintptr, error) {
		return rawIoctl(fd, request, arg)
	})
}

// ioctlPtr issues request with a pointer to a driver-facing record. The
// record must stay reachable until the call returns.
func ioctlPtr(fd, request uintptr, arg unsafe.Pointer) (uintptr, error) {
	v, err := retryOnEINTR(func() (uintptr, error) {
		return rawIoctl(fd, request, uintptr(arg))
	})
	runtime.KeepAlive(arg)
	return v, err
}
