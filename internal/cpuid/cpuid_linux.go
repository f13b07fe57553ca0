//go:build linux

package cpuid

import "golang.org/x/sys/unix"

// sampleOS issues the real getcpu(2) syscall, the direct analogue of the
// reference design's getcpu() call.
func sampleOS() int {
	cpu, err := unix.SchedGetcpu()
	if err != nil {
		return 0
	}
	return cpu
}
