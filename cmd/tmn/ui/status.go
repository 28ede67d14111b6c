package ui

import (
	"tmn"
)

var statusHeaders = []string{"CONTAINER", "STATUS", "ID", "HEALTHY"}

// StatusTable renders a status snapshot. Missing containers show as unknown.
func StatusTable(records []tmn.StatusRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, statusCell(r.Status), r.ShortID, Bool(r.Healthy)})
	}
	return Table(statusHeaders, rows)
}

func statusCell(s tmn.ContainerStatus) string {
	switch s {
	case tmn.StatusRunning:
		return Success(s.String())
	case "":
		return Muted(s.String())
	case tmn.StatusRestarting, tmn.StatusPaused, tmn.StatusRemoving:
		return Warn(s.String())
	default:
		return ErrorStyle.Render(s.String())
	}
}
