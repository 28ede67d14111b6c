package masternode

import (
	"context"

	"tmn"

	"github.com/docker/docker/pkg/stringid"
)

func (m *Masternode) status(ctx context.Context) ([]tmn.StatusRecord, error) {
	records := make([]tmn.StatusRecord, 0, len(m.topo.Containers))
	for _, spec := range m.topo.Containers {
		info, err := m.inspect(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		rec := tmn.StatusRecord{Name: spec.Name}
		if info.Exists {
			rec.Status = info.Status
			rec.ShortID = stringid.TruncateID(info.ID)
			rec.Healthy = info.Status == tmn.StatusRunning
		}
		records = append(records, rec)
	}
	return records, nil
}
