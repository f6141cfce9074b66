package models

import "time"

// Signature identifies who authored or committed a snapshot
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit represents a repository snapshot
type Commit struct {
	ID        string
	ParentIDs []string
	Message   string
	Author    Signature
	Committer Signature
}

// ShortID returns a shortened commit ID (first 7 characters)
func (c *Commit) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}

// IsRoot returns true if this commit has no parents
func (c *Commit) IsRoot() bool {
	return len(c.ParentIDs) == 0
}

// ParentID returns the first parent, or "" for a root commit
func (c *Commit) ParentID() string {
	if len(c.ParentIDs) == 0 {
		return ""
	}
	return c.ParentIDs[0]
}
