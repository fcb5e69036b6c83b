package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without performing actual deletions
type FakeDeleter struct {
	Calls []string

	// Err, when set, is returned from every call. Lets tests exercise
	// the suppress-all-failures contract of Remover.
	Err error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return f.Err
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	return f.Err
}
