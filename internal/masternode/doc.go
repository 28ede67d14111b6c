// Package masternode converges a container runtime towards a declared
// tmn.Topology.
//
// Start provisions volumes and networks, makes sure every declared
// container exists (pulling its image first) and drives each one to the
// running phase. Stop drives existing containers to a stopped phase.
// Status reports one record per declared container. All three re-derive
// state from the runtime on every call, so re-running an operation after a
// failure completes the remaining work.
package masternode
