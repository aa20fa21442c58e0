package introtator_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/logpilot"
	"golift.io/logpilot/filer"
	"golift.io/logpilot/introtator"
	"golift.io/logpilot/mocks"
)

var errTest = fmt.Errorf("this is a test error")

// Our interface must satify a logpilot.Rotatorr.
var _ logpilot.Rotatorr = (*introtator.Layout)(nil)

func testFakeFiles(mockCtrl *gomock.Controller, names ...string) []os.FileInfo {
	files := []os.FileInfo{}

	for _, name := range names {
		fake := mocks.NewMockFileInfo(mockCtrl)
		fake.EXPECT().Name().Return(name).AnyTimes()
		fake.EXPECT().IsDir().Return(false).AnyTimes()
		files = append(files, fake)
	}

	return files
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
}

func TestPost(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &introtator.Layout{PostRotate: func(s1, s2 string) {
		assert.Equal("string1", s1)
		assert.Equal("string2", s2)
	}}
	layout.Post("string1", "string2")

	layout.PostRotate = nil
	layout.Post("string1", "string2")
}

func TestDirs(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := &introtator.Layout{FileCount: -4}
	dirs, err := layout.Dirs(filepath.Join("/", "var", "log", "service.log"))
	assert.Equal([]string{filepath.Join("/", "var", "log")}, dirs, "the wrong directory was returned")
	assert.Nil(err, "this should not producce an error")
	assert.EqualValues(filer.Default(), layout.Filer)
	assert.Zero(layout.FileCount, "negative counts mean unlimited")
}

func TestRotateFirst(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &introtator.Layout{Filer: mockFiler, FileCount: 3}

	gomock.InOrder(
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service_1.log"),
		mockFiler.EXPECT().ReadDir("/var/log").Return(testFakeFiles(mockCtrl, "service_1.log"), nil),
	)
	//
	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service_1.log", file)
	assert.Nil(err)
	assert.Equal(1, layout.Sequence())

	// A failed rename still moves the counter and still prunes.
	gomock.InOrder(
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service_2.log").Return(errTest),
		mockFiler.EXPECT().ReadDir("/var/log").Return(testFakeFiles(mockCtrl, "service.log", "service_1.log"), nil),
	)
	//
	file, err = layout.Rotate("/var/log/service.log")
	assert.Empty(file, "the file must be empty when rotation fails.")
	assert.ErrorIs(err, errTest, "the rename error must be returned.")
	assert.Equal(2, layout.Sequence())

	// Next one is _3.
	gomock.InOrder(
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service_3.log"),
		mockFiler.EXPECT().ReadDir("/var/log").Return(nil, errTest),
	)
	//
	file, err = layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service_3.log", file, "a listing error does not undo the rename")
	assert.ErrorIs(err, errTest)
}

func TestRotateNeverPrunesActiveFile(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &introtator.Layout{Filer: mockFiler, FileCount: 1}

	// The rename failed so service.log is still there; it sorts first but must be skipped.
	gomock.InOrder(
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service_1.log").Return(errTest),
		mockFiler.EXPECT().ReadDir("/var/log").Return(
			testFakeFiles(mockCtrl, "service_3.log", "service.log", "other.log", "service_2.log"), nil),
		mockFiler.EXPECT().Remove("/var/log/service_2.log"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Empty(file)
	assert.ErrorIs(err, errTest)
}

func TestRotateRemoveErrors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFiler := mocks.NewMockFiler(mockCtrl)
	layout := &introtator.Layout{Filer: mockFiler, FileCount: 1}

	// Every removal is attempted even when one fails.
	gomock.InOrder(
		mockFiler.EXPECT().Rename("/var/log/service.log", "/var/log/service_1.log"),
		mockFiler.EXPECT().ReadDir("/var/log").Return(
			testFakeFiles(mockCtrl, "service_1.log", "service_7.log", "service_8.log"), nil),
		mockFiler.EXPECT().Remove("/var/log/service_1.log").Return(errTest),
		mockFiler.EXPECT().Remove("/var/log/service_7.log"),
	)

	file, err := layout.Rotate("/var/log/service.log")
	assert.Equal("/var/log/service_1.log", file)
	assert.ErrorIs(err, errTest)
}

func TestOldestFirstEviction(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	dir := t.TempDir()

	touch(t, dir, "svc.log", "svc_2.log", "svc_3.log", "svc_4.log", "svc_5.log", "other.log")

	layout := &introtator.Layout{FileCount: 2}
	_, err := layout.Dirs(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)

	// svc.log -> svc_1.log, then 5 archives with room for 2: 1, 2 and 3 go.
	file, err := layout.Rotate(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "svc_1.log"), file)

	for _, gone := range []string{"svc.log", "svc_1.log", "svc_2.log", "svc_3.log"} {
		assert.NoFileExists(filepath.Join(dir, gone))
	}

	for _, kept := range []string{"svc_4.log", "svc_5.log", "other.log"} {
		assert.FileExists(filepath.Join(dir, kept))
	}
}

func TestLexicographicEviction(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	dir := t.TempDir()

	// Left over from a previous run. The counter starts over, so svc_1.log is replaced.
	touch(t, dir, "svc.log")

	for i := 1; i <= 12; i++ {
		touch(t, dir, fmt.Sprintf("svc_%d.log", i))
	}

	layout := &introtator.Layout{FileCount: 5}
	_, err := layout.Dirs(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)

	_, err = layout.Rotate(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)

	// Sorted by name: 1, 10, 11, 12, 2, 3, 4, 5, 6, 7, 8, 9. The first 7 are deleted.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.Equal([]string{"svc_5.log", "svc_6.log", "svc_7.log", "svc_8.log", "svc_9.log"}, names)
}

func TestUnlimited(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	touch(t, dir, "svc_1.log", "svc_2.log", "svc_3.log")

	layout := &introtator.Layout{}
	_, err := layout.Dirs(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		touch(t, dir, "svc.log")
		_, err = layout.Rotate(filepath.Join(dir, "svc.log"))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "nothing is deleted with FileCount 0, the first three are replaced")
	assert.Equal(t, 3, layout.Sequence())
}

func TestLogf(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	dir := t.TempDir()

	touch(t, dir, "svc.log", "svc_5.log")

	lines := []string{}
	layout := &introtator.Layout{
		FileCount: 1,
		Logf:      func(msg string, v ...any) { lines = append(lines, fmt.Sprintf(msg, v...)) },
	}
	_, err := layout.Dirs(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)

	_, err = layout.Rotate(filepath.Join(dir, "svc.log"))
	require.NoError(t, err)
	assert.Len(lines, 3)
	assert.Contains(lines[0], "svc_1.log")
	assert.Contains(lines[1], "identified 1 old logs to delete")
	assert.Contains(lines[2], filepath.Join(dir, "svc_1.log"))
}
