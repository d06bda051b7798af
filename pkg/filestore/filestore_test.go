package filestore

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG: signature plus empty IHDR is enough for sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store, err := New(Config{Dir: t.TempDir(), MaxBytes: maxBytes}, zerolog.New(io.Discard))
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := newTestStore(t, 0)

	pdf := []byte("%PDF-1.4\n%test document\n")
	name, err := store.Save(bytes.NewReader(pdf))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".pdf"), "stored name carries the sniffed extension")

	reader, mime, err := store.Open(name)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, "application/pdf", mime)

	stored, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, pdf, stored)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t, 0)

	_, err := store.Save(strings.NewReader("#!/bin/sh\nrm -rf /\n"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	store := newTestStore(t, 16)

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	_, err := store.Save(bytes.NewReader(payload))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnsupportedType)
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t, 0)

	_, _, err := store.Open("../../../etc/passwd")
	require.Error(t, err)

	_, _, err = store.Open("")
	require.Error(t, err)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t, 0)

	name, err := store.Save(bytes.NewReader([]byte("%PDF-1.4\n")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(name), "removing a missing file is not an error")

	_, _, err = store.Open(name)
	require.Error(t, err)
}
