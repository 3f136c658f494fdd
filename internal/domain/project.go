package domain

// Project is a Toggl project. Only its name is used, to label imported job types.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Active      bool
}
