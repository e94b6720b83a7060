package levelset

// Init prepares the grid engine for use. The engine keeps no process wide
// state, so Init has nothing to set up and operations never require it.
// It exists so foreign hosts can keep their initialize-first protocol and
// is safe to call any number of times from any goroutine.
func Init() {}
