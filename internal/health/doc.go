// Package health checks whether a project's services answer on their ports.
//
// Each configured service gets a reachability check against its slot's host
// port:
//
//	postgres  TCP connect
//	redis     PING through go-redis
//	s3        GET /health on the object store API
//
// Checks never fail the caller; a service that cannot be reached is reported
// as StatusUnhealthy with the error as detail.
//
// # Health Status
//
//	StatusHealthy   - the service answered
//	StatusUnhealthy - the service did not answer in time
//	StatusStopped   - no container is running for the service
package health
