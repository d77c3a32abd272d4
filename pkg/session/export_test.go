package session

import "github.com/spf13/afero"

func OverloadFS(overload afero.Fs) func() {
	fsRef := fs
	fs = overload
	return func() { fs = fsRef }
}

func OverloadAllocate(overload func(int) ([]byte, error)) func() {
	allocateRef := allocate
	allocate = overload
	return func() { allocate = allocateRef }
}
