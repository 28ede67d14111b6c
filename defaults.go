package tmn

const (
	DefaultVolume  = "blockchain_data"
	DefaultNetwork = "masternode"

	MetricsContainer   = "metrics"
	MetricsImage       = "tomochain/infra-telegraf:devnet"
	TomochainContainer = "tomochain"
	TomochainImage     = "tomochain/infra-tomochain:devnet"
)

// DefaultTopology returns the masternode declaration: a metrics collector
// with read-only views of the host, and the blockchain client with its
// chain data on a named volume.
func DefaultTopology() Topology {
	return Topology{
		Volumes:  []VolumeSpec{{Name: DefaultVolume}},
		Networks: []NetworkSpec{{Name: DefaultNetwork}},
		Containers: []ContainerSpec{
			{
				Name:     MetricsContainer,
				Image:    MetricsImage,
				Hostname: "test",
				Network:  DefaultNetwork,
				Mounts: []Mount{
					{Source: "/var/run/docker.sock", Target: "/var/run/docker.sock", Mode: ReadOnly},
					{Source: "/sys", Target: "/rootfs/sys", Mode: ReadOnly},
					{Source: "/proc", Target: "/rootfs/proc", Mode: ReadOnly},
					{Source: "/etc", Target: "/rootfs/etc", Mode: ReadOnly},
				},
				Detach: true,
			},
			{
				Name:    TomochainContainer,
				Image:   TomochainImage,
				Network: DefaultNetwork,
				Mounts: []Mount{
					{Source: DefaultVolume, Target: "/tomochain/data", Mode: ReadWrite},
				},
				Detach: true,
			},
		},
	}
}
