package out

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"studyhub/internal/modules/mirror/domain"
)

func TestRedisDocumentAPIAgainstLiveServer(t *testing.T) {
	url := os.Getenv("STUDYHUB_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDYHUB_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	api, err := NewRedisDocumentAPI(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer api.Close()
	if err := api.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	who := domain.Identity{UserID: "studyhub-test-" + t.Name()}
	defer api.client.Del(ctx, HashKey(who.UserID, "exams"))

	if err := api.Upsert(ctx, who, "exams", "b", json.RawMessage(`{"id":"b"}`)); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	if err := api.Upsert(ctx, who, "exams", "a", json.RawMessage(`{"id":"a"}`)); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := api.Remove(ctx, who, "exams", "b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, err := api.List(ctx, who, "exams")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || string(items[0]) != `{"id":"a"}` {
		t.Fatalf("unexpected items %s", items)
	}
}

func TestRedisHashKeyLayout(t *testing.T) {
	t.Parallel()
	if got := HashKey("u1", "sessions"); got != "users:u1:sessions" {
		t.Fatalf("unexpected key %q", got)
	}
	if _, err := NewRedisDocumentAPI("not a url"); err == nil {
		t.Fatalf("expected bad url to fail")
	}
}
