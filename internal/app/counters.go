package app

import "github.com/hylla/taskboard/internal/domain"

// CounterDelta is the change to one project's cached counters.
type CounterDelta struct {
	ProjectID string
	Tasks     int
	Completed int
}

// CountProjectTasks returns the total and completed task counts for projectID.
func CountProjectTasks(tasks []domain.Task, projectID string) (int, int) {
	total, completed := 0, 0
	for _, task := range tasks {
		if task.ProjectID != projectID {
			continue
		}
		total++
		if task.Status == domain.StatusDone {
			completed++
		}
	}
	return total, completed
}

// RecountProjects recomputes every project's counters from tasks.
func RecountProjects(projects []domain.Project, tasks []domain.Task) []domain.Project {
	totals := map[string]int{}
	done := map[string]int{}
	for _, task := range tasks {
		totals[task.ProjectID]++
		if task.Status == domain.StatusDone {
			done[task.ProjectID]++
		}
	}
	out := make([]domain.Project, len(projects))
	for i, project := range projects {
		project.SetCounters(totals[project.ID], done[project.ID])
		out[i] = project
	}
	return out
}

// TaskCounterDeltas derives counter changes from a task's before and after images.
// prev is nil for creates and next is nil for deletes. Zero deltas are omitted.
func TaskCounterDeltas(prev, next *domain.Task) []CounterDelta {
	byProject := map[string]*CounterDelta{}
	order := []string{}
	add := func(task *domain.Task, sign int) {
		if task == nil {
			return
		}
		delta, ok := byProject[task.ProjectID]
		if !ok {
			delta = &CounterDelta{ProjectID: task.ProjectID}
			byProject[task.ProjectID] = delta
			order = append(order, task.ProjectID)
		}
		delta.Tasks += sign
		if task.Status == domain.StatusDone {
			delta.Completed += sign
		}
	}
	add(prev, -1)
	add(next, 1)

	out := make([]CounterDelta, 0, len(order))
	for _, projectID := range order {
		delta := byProject[projectID]
		if delta.Tasks == 0 && delta.Completed == 0 {
			continue
		}
		out = append(out, *delta)
	}
	return out
}

// ApplyCounterDeltas returns projects with deltas applied. Projects without a delta are unchanged.
func ApplyCounterDeltas(projects []domain.Project, deltas []CounterDelta) []domain.Project {
	out := append([]domain.Project(nil), projects...)
	for _, delta := range deltas {
		for i := range out {
			if out[i].ID != delta.ProjectID {
				continue
			}
			out[i].SetCounters(out[i].TaskCount+delta.Tasks, out[i].CompletedCount+delta.Completed)
		}
	}
	return out
}
