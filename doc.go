// Package kernelsim provides a simulated operating-system kernel: a process
// table, three strict-priority ready queues, a dispatcher, blocking
// send/receive message passing and the create/fork/exit/kill lifecycle.
//
// End-users typically interact with the simulator via the Service façade
// exposed by the root package:
//
//	srv, _ := kernelsim.New()
//	rt := srv.Runtime()
//	p, _ := rt.Create(ctx, 0)
//	_, _ = rt.QuantumExpire(ctx)
//	_, _ = rt.Send(ctx, p.PID+1, "hello")
//
// Scripted sessions are loaded as YAML scenarios and replayed with
// Service.RunScenario. The kernel core lives in runtime/kernel.
package kernelsim
