package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// storeUnderTest runs the shared contract against every local driver.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"fs":     fs,
	}
}

func TestStorePutGetRoundtrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			opts := PutOptions{
				ContentType: "text/csv",
				Metadata:    map[string]string{"run-id": "abc"},
			}
			info, err := store.Put(ctx, "2025/01/01/summary.csv", strings.NewReader("plant_id,day\n"), opts)
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len("plant_id,day\n")) {
				t.Fatalf("size = %d", info.Size)
			}

			got, rc, err := store.Get(ctx, "2025/01/01/summary.csv")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != "plant_id,day\n" {
				t.Fatalf("data = %q", data)
			}
			if got.ContentType != "text/csv" || got.Metadata["run-id"] != "abc" {
				t.Fatalf("metadata not preserved: %+v", got)
			}
		})
	}
}

func TestStorePutOverwrites(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Put(ctx, "k", strings.NewReader("first"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Put(ctx, "k", strings.NewReader("second"), PutOptions{}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			_, rc, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "second" {
				t.Fatalf("data = %q, want second", data)
			}
			infos, err := store.List(ctx, "")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 1 {
				t.Fatalf("objects = %d, want 1", len(infos))
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get err = %v, want ErrNotFound", err)
			}
			if _, err := store.Head(ctx, "absent"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("head err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Put(ctx, "k", strings.NewReader("x"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			found, err := store.Delete(ctx, "k")
			if err != nil || !found {
				t.Fatalf("delete = %v %v, want true nil", found, err)
			}
			found, err = store.Delete(ctx, "k")
			if err != nil || found {
				t.Fatalf("second delete = %v %v, want false nil", found, err)
			}
		})
	}
}

func TestStoreListPrefix(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			keys := []string{
				"2025/01/01/summary.csv",
				"2025/01/02/summary.csv",
				"2025/02/01/summary.csv",
			}
			for _, key := range keys {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}

			infos, err := store.List(ctx, "2025/01/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("objects = %d, want 2", len(infos))
			}
			if infos[0].Key != keys[0] || infos[1].Key != keys[1] {
				t.Fatalf("keys out of order: %v %v", infos[0].Key, infos[1].Key)
			}
		})
	}
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	fs, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	if _, err := fs.Put(context.Background(), "../escape", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatal("put accepted a traversal key")
	}
}
