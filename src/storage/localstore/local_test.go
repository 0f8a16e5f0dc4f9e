package localstore

import (
	"bytes"
	"context"
	"testing"
)

func TestSaveAudioRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	data := []byte("mp3 bytes")
	ref, err := store.SaveAudio(context.Background(), data, "abc-123", 42, "mp3")
	if err != nil {
		t.Fatalf("SaveAudio() error = %v", err)
	}
	if ref != "/storage/podcasts/user_42/abc-123/audio.mp3" {
		t.Fatalf("ref = %q", ref)
	}

	got, err := store.ReadFile(ref)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("ReadFile() = %q, want %q", got, data)
	}
}

func TestSaveAudioOverwritesPriorAttempt(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ctx := context.Background()
	first, err := store.SaveAudio(ctx, []byte("first"), "p1", 1, "mp3")
	if err != nil {
		t.Fatalf("SaveAudio() error = %v", err)
	}
	second, err := store.SaveAudio(ctx, []byte("second"), "p1", 1, "mp3")
	if err != nil {
		t.Fatalf("SaveAudio() error = %v", err)
	}
	if first != second {
		t.Fatalf("retried save produced different refs: %q vs %q", first, second)
	}

	got, err := store.ReadFile(second)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("artifact = %q, want the overwritten content", got)
	}
}

func TestDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ctx := context.Background()
	ref, err := store.SaveThumbnail(ctx, []byte("png"), "p1", 1, "png")
	if err != nil {
		t.Fatalf("SaveThumbnail() error = %v", err)
	}

	if !store.Delete(ctx, ref) {
		t.Fatal("Delete() = false for an existing artifact")
	}
	if _, err := store.ReadFile(ref); err == nil {
		t.Fatal("artifact still readable after delete")
	}
	if store.Delete(ctx, ref) {
		t.Fatal("Delete() = true for a missing artifact")
	}
}

func TestDeleteRejectsForeignReferences(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	for _, ref := range []string{"", "podcasts/user_1/p/audio.mp3", "/storage/podcasts/../etc/passwd"} {
		if store.Delete(context.Background(), ref) {
			t.Errorf("Delete(%q) = true, want false", ref)
		}
	}
}
