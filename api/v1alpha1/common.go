package v1alpha1

// StringToTaskState maps a backend state string onto the known vocabulary.
// Matching is exact: any other value, including a differently cased one,
// is TaskStateUnknown and the task keeps being polled.
func StringToTaskState(s string) TaskState {
	switch TaskState(s) {
	case TaskStatePending, TaskStateProgress, TaskStateSuccess, TaskStateFailure, TaskStateError:
		return TaskState(s)
	default:
		return TaskStateUnknown
	}
}

// IsTerminal reports whether no further status change is expected.
func (s TaskState) IsTerminal() bool {
	return s == TaskStateSuccess || s == TaskStateFailure
}
