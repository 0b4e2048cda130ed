package gitops

// Resolver adapts the git helpers to the engine's change-resolution
// interface.
type Resolver struct{}

// NewResolver returns a git-backed resolver.
func NewResolver() Resolver {
	return Resolver{}
}

// DefaultBranch reports the base branch to diff against when none was
// given explicitly.
func (Resolver) DefaultBranch(root string) string {
	return DefaultBranch(root)
}

// Resolve returns the change-set between base and head as absolute paths.
func (Resolver) Resolve(root, base, head string) (map[string]bool, error) {
	return ChangedFiles(root, base, head)
}
