package command

// CommandSchema describes a registered CommandType: its trigger, its fixed
// register-argument count, whether it is self-justifying for prune, and
// whether it ever folds at compile time.
type CommandSchema struct {
	Trigger CommandTrigger
	// Values is the number of registers this command's instructions carry.
	Values int
	// SelfJustifying marks a side-effecting command (stream writes,
	// asserts, stores) that prune must always keep.
	SelfJustifying bool
	// Foldable declares that this CommandType's Command values implement
	// Foldable. CommandTypeStore.Register verifies this at registration
	// time rather than relying on a default preimage behavior tripping a
	// runtime error.
	Foldable bool
}
