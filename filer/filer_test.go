package filer_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/logpilot/filer"
	"golift.io/logpilot/mocks"
)

// Our interface must satify a filer.Filer.
var _ filer.Filer = (*MyFiler)(nil)

// Create a custom Filer that overrides only the Rename method.
type MyFiler struct {
	filer.File
}

func (f *MyFiler) Rename(oldpath, newpath string) error {
	fmt.Printf("Renamed %s -> %s\n", oldpath, newpath)

	return nil
}

func ExampleFile() {
	// Pass s into any package that uses a filer.Filer.
	s := &MyFiler{}
	_ = s.Rename("old.file", "new.file")
	// Output:
	// Renamed old.file -> new.file
}

func TestFind(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	dir := t.TempDir()

	for _, name := range []string{"app_log_2.log", "app_log_10.log", "app_log.log", "unrelated.log", "app_log.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "app_log_dir"), 0o750))

	found, err := filer.Find(filer.Default(), dir, "app_log")
	require.NoError(t, err)
	assert.Equal([]string{
		filepath.Join(dir, "app_log.log"),
		filepath.Join(dir, "app_log.zip"),
		filepath.Join(dir, "app_log_10.log"),
		filepath.Join(dir, "app_log_2.log"),
	}, found, "directories are skipped and names sort as strings")

	found, err = filer.Find(filer.Default(), dir, "nothing")
	require.NoError(t, err)
	assert.Empty(found)

	_, err = filer.Find(filer.Default(), filepath.Join(dir, "missing"), "app_log")
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestFindMock(t *testing.T) {
	t.Parallel()

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	fake := mocks.NewMockFileInfo(mockCtrl)

	fake.EXPECT().IsDir().Return(false)
	fake.EXPECT().Name().Return("service_1.log").Times(2)
	mockFiler.EXPECT().ReadDir("/var/log").Return([]os.FileInfo{fake}, nil)

	found, err := filer.Find(mockFiler, "/var/log", "service")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/", "var", "log", "service_1.log")}, found)
}
