package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/state"
	"github.com/llehouerou/platter/internal/tags"
)

func setupTestLibrary(t *testing.T, files map[string]*tags.Track) (*Library, string) {
	t.Helper()
	st, err := state.Open(state.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	root := t.TempDir()
	for name := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	extract := func(path string) (*tags.Track, error) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		tr, ok := files[rel]
		if !ok || tr == nil {
			return nil, &tags.MissingTagError{Tag: "title"}
		}
		cp := *tr
		cp.Path = path
		return &cp, nil
	}
	return New(st.DB(), logger.Discard(), extract), root
}

func track(n int, title, album, artist string) *tags.Track {
	return &tags.Track{TrackNumber: n, Title: title, Album: album, Artist: artist, Cover: []byte{1, 2, 3}}
}

func TestScan_IndexesTracks(t *testing.T) {
	lib, root := setupTestLibrary(t, map[string]*tags.Track{
		"a/01.mp3": track(1, "One", "Alpha", "Band"),
		"a/02.mp3": track(2, "Two", "Alpha", "Band"),
		"b/01.mp3": track(1, "Uno", "Beta", "Other"),
	})

	report, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.Added)
	assert.Equal(t, 0, report.Duplicates)
	assert.Empty(t, report.Warnings)

	count, err := lib.TrackCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	artists, err := lib.Artists()
	require.NoError(t, err)
	assert.Equal(t, []string{"Band", "Other"}, artists)

	albums, err := lib.Albums()
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "Alpha", albums[0].Title)
	assert.Equal(t, "Beta", albums[1].Title)
	assert.Equal(t, []byte{1, 2, 3}, albums[0].Cover)

	tracks, err := lib.Tracks(albums[0].ID)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "One", tracks[0].Title)
	assert.Equal(t, "Two", tracks[1].Title)
	assert.Equal(t, "Band", tracks[0].Artist)
}

func TestScan_WarningsCommitNothing(t *testing.T) {
	lib, root := setupTestLibrary(t, map[string]*tags.Track{
		"01.mp3":    track(1, "Good", "Album", "Artist"),
		"02.mp3":    nil,
		"cover.jpg": nil,
		"03.mp3":    track(3, "Also Good", "Album", "Artist"),
	})

	report, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Files)
	assert.Equal(t, 2, report.Added)
	require.Len(t, report.Warnings, 2)
	for _, w := range report.Warnings {
		var missing *tags.MissingTagError
		assert.True(t, errors.As(w, &missing))
		_, err := lib.TrackByPath(w.Path)
		assert.Error(t, err, "no row for %s", w.Path)
	}

	count, err := lib.TrackCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScan_Idempotent(t *testing.T) {
	lib, root := setupTestLibrary(t, map[string]*tags.Track{
		"01.mp3": track(1, "One", "Album", "Artist"),
		"02.mp3": track(2, "Two", "Album", "Artist"),
	})

	_, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)

	report, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 2, report.Duplicates)

	count, err := lib.TrackCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	albums, err := lib.Albums()
	require.NoError(t, err)
	assert.Len(t, albums, 1)
}

func TestScan_DuplicatePathNotOverwritten(t *testing.T) {
	files := map[string]*tags.Track{"01.mp3": track(1, "Original", "Album", "Artist")}
	lib, root := setupTestLibrary(t, files)

	_, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)

	files["01.mp3"] = track(1, "Retagged", "Album", "Artist")
	_, err = lib.Scan(context.Background(), root)
	require.NoError(t, err)

	got, err := lib.TrackByPath(filepath.Join(root, "01.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}

func TestScan_MissingRoot(t *testing.T) {
	lib, root := setupTestLibrary(t, nil)

	_, err := lib.Scan(context.Background(), filepath.Join(root, "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_ContextCanceled(t *testing.T) {
	lib, root := setupTestLibrary(t, map[string]*tags.Track{
		"01.mp3": track(1, "One", "Album", "Artist"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := lib.Scan(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Added)
}

func TestNew_DefaultsToTagsExtract(t *testing.T) {
	st, err := state.Open(state.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	lib := New(st.DB(), logger.Discard(), nil)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))

	report, err := lib.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.ErrorIs(t, report.Warnings[0], tags.ErrUnsupported)
}

func TestDiscoverFiles_Sorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.mp3", "a/z.flac", "a/y.mp3"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	files, err := discoverFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "y.mp3"),
		filepath.Join(root, "a", "z.flac"),
		filepath.Join(root, "b.mp3"),
	}, files)
}
