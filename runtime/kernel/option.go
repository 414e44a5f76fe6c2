package kernel

import (
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/dao"
)

// Option configures a Kernel.
type Option func(k *Kernel)

// WithConfig sets the kernel configuration.
func WithConfig(config Config) Option {
	return func(k *Kernel) {
		k.config = config
	}
}

// WithMaxPayload sets the maximum message payload length in bytes.
func WithMaxPayload(size int) Option {
	return func(k *Kernel) {
		k.config.MaxPayload = size
	}
}

// WithMaxProcesses sets the process table capacity; zero means unbounded.
func WithMaxProcesses(count int) Option {
	return func(k *Kernel) {
		k.config.MaxProcesses = count
	}
}

// WithPreemptIdle makes a process becoming ready take the CPU from the idle
// process immediately instead of on the next quantum.
func WithPreemptIdle(flag bool) Option {
	return func(k *Kernel) {
		k.config.PreemptIdle = flag
	}
}

// WithProcessDAO sets the process arena implementation.
func WithProcessDAO(processDAO dao.Service[int, process.Process]) Option {
	return func(k *Kernel) {
		k.table.store = processDAO
	}
}

// WithListener registers listeners notified after every operation with the
// changes it made, in order.
func WithListener(listeners ...Listener) Option {
	return func(k *Kernel) {
		for _, l := range listeners {
			if l != nil {
				k.listeners = append(k.listeners, l)
			}
		}
	}
}
