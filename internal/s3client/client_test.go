package s3client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func TestPutGetRoundtrip(t *testing.T) {
	c := TestClient(t, "artifacts")
	ctx := context.Background()
	body := []byte("\x89PNG fake screenshot")

	if err := c.Put(ctx, "run-1/TC-004-github-integration.png", bytes.NewReader(body), int64(len(body)), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get(ctx, "run-1/TC-004-github-integration.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestGetMissingObject(t *testing.T) {
	c := TestClient(t, "artifacts")
	_, err := c.Get(context.Background(), "nope.png")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	t.Parallel()
	if _, err := New(context.Background(), Config{Region: "auto"}); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

func TestURI(t *testing.T) {
	c := TestClient(t, "results")
	if got := c.URI("/run/a.png"); got != "s3://results/run/a.png" {
		t.Fatalf("unexpected URI %q", got)
	}
	if c.Bucket() != "results" {
		t.Fatalf("unexpected bucket %q", c.Bucket())
	}
}

func TestListReturnsOnlyPrefix(t *testing.T) {
	c := TestClient(t, "artifacts")
	iteration := 0
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		// Every iteration gets its own prefix; the bucket is shared.
		iteration++
		run := fmt.Sprintf("run-%d", iteration)
		names := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z0-9]{1,12}`), 1, 8, func(s string) string { return s },
		).Draw(rt, "names")

		want := make([]string, 0, len(names))
		for _, name := range names {
			key := run + "/" + name + ".png"
			if err := c.Put(ctx, key, bytes.NewReader(nil), 0, "image/png"); err != nil {
				rt.Fatalf("Put: %v", err)
			}
			want = append(want, key)
		}
		if err := c.Put(ctx, "other/"+run+".png", bytes.NewReader(nil), 0, "image/png"); err != nil {
			rt.Fatalf("Put: %v", err)
		}

		got, err := c.List(ctx, run+"/")
		if err != nil {
			rt.Fatalf("List: %v", err)
		}
		sort.Strings(got)
		sort.Strings(want)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			rt.Fatalf("List mismatch:\n got=%v\nwant=%v", got, want)
		}
	})
}
