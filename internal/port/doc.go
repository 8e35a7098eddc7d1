// Package port derives each project's block of host ports from its slot index
// and probes the OS for listeners on candidate ports.
//
// # Port Formula
//
// A slot index in [0, MaxSlots) maps to a fixed set of named ports:
//
//	postgres  = 5433 + i      redis     = 6380 + i
//	s3        = 9010 + 10*i   s3Console = 9011 + 10*i
//	frontend  = 4000 + 10*i   backend   = 4001 + 10*i
//
// The stride-1 ports live in ranges no other port can reach, and the
// stride-10 ports use offsets 0 and 1 inside a 10-wide block, so no two
// indices ever share a port.
//
// # Probing
//
// SocketProber asks the OS socket table (ss on Linux, lsof on macOS) whether
// a port has a TCP listener. The answer is an Availability rather than a
// bool: when the tool is missing or fails the answer is Inconclusive, and
// the caller's Policy decides what that means. The default policy is
// FailOpen, which treats Inconclusive as free.
package port
