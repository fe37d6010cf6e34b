package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/repository"
	"go.uber.org/zap"
)

type stubEmbedder struct {
	calls  int
	texts  []string
	failAt int // 1-based call number that fails; 0 never fails
	reject func(text string) bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	s.texts = append(s.texts, text)
	if s.failAt != 0 && s.calls == s.failAt {
		return nil, errors.New("embedder unavailable")
	}
	if s.reject != nil && s.reject(text) {
		return nil, errors.New("empty embedding")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (s *stubEmbedder) Model() string { return "stub" }

func seed(t *testing.T, n int) (repository.ChatRepository, int64) {
	t.Helper()
	texts := make([]string, n)
	for i := range texts {
		texts[i] = "msg"
	}
	repo, ids := seedChats(t, texts)
	return repo, ids[0]
}

// seedChats creates one chat per text list and returns their ids.
func seedChats(t *testing.T, chats ...[]string) (repository.ChatRepository, []int64) {
	t.Helper()
	logger := zap.NewNop()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "whoyap.db"), logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.MigrateDB(db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	repo := repository.NewChatRepository(db, logger)
	ids := make([]int64, 0, len(chats))
	for _, texts := range chats {
		chat, err := repo.CreateGroupChat(ctx, "c", "u")
		if err != nil {
			t.Fatalf("CreateGroupChat: %v", err)
		}
		p, _ := repo.CreateParticipant(ctx, chat.ID, "Alice")
		for _, text := range texts {
			if _, err := repo.CreateMessage(ctx, chat.ID, p.ID, time.Now().UTC(), text); err != nil {
				t.Fatalf("CreateMessage: %v", err)
			}
		}
		ids = append(ids, chat.ID)
	}
	return repo, ids
}

func TestEmbedChatIsResumable(t *testing.T) {
	ctx := context.Background()
	repo, chatID := seed(t, 5)

	failing := &stubEmbedder{failAt: 3}
	b := NewBackfiller(repo, failing, Config{BatchSize: 2}, zap.NewNop())
	n, err := b.EmbedChat(ctx, chatID)
	if err == nil {
		t.Fatal("expected the pass to report the failed message")
	}
	if n != 4 || failing.calls != 5 {
		t.Errorf("first pass embedded %d with %d calls, want 4 of 5", n, failing.calls)
	}

	healthy := &stubEmbedder{}
	b = NewBackfiller(repo, healthy, Config{BatchSize: 2}, zap.NewNop())
	n, err = b.EmbedChat(ctx, chatID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if n != 1 || healthy.calls != 1 {
		t.Errorf("resume embedded %d with %d calls, want 1", n, healthy.calls)
	}

	// Nothing left: a repeated pass is a no-op.
	n, err = b.EmbedChat(ctx, chatID)
	if err != nil || n != 0 {
		t.Errorf("repeat pass = %d, %v; want 0, nil", n, err)
	}
	pending, _ := repo.ListUnembeddedMessages(ctx, chatID, 0, 10)
	if len(pending) != 0 {
		t.Errorf("%d messages still pending", len(pending))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repo, _ := seed(t, 3)
	emb := &stubEmbedder{}
	b := NewBackfiller(repo, emb, Config{PollInterval: 10 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		pending, err := repo.ListUnembeddedMessages(context.Background(), 0, 0, 10)
		if err == nil && len(pending) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("backfill did not embed pending messages")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEmbedChatSkipsRejectedMessages(t *testing.T) {
	ctx := context.Background()
	repo, ids := seedChats(t, []string{"", "poison", "  "}, []string{"hello"})

	emb := &stubEmbedder{reject: func(text string) bool { return text == "poison" }}
	b := NewBackfiller(repo, emb, Config{BatchSize: 1}, zap.NewNop())

	for pass := 1; pass <= 2; pass++ {
		n, err := b.EmbedChat(ctx, 0)
		if err == nil {
			t.Fatalf("pass %d: expected the rejected message to be reported", pass)
		}
		if pass == 1 && n != 1 {
			t.Errorf("pass 1 embedded %d, want 1", n)
		}
		if pass == 2 && n != 0 {
			t.Errorf("pass 2 embedded %d, want 0", n)
		}
	}

	for _, text := range emb.texts {
		if text == "" || text == "  " {
			t.Fatal("blank message was sent to the embedder")
		}
	}
	pending, _ := repo.ListUnembeddedMessages(ctx, ids[1], 0, 10)
	if len(pending) != 0 {
		t.Errorf("second chat still has %d pending messages", len(pending))
	}
}

func TestEmbedChatStopsWhenEmbedderIsDown(t *testing.T) {
	repo, chatID := seed(t, 3*maxConsecutiveFailures)
	emb := &stubEmbedder{reject: func(string) bool { return true }}
	b := NewBackfiller(repo, emb, Config{BatchSize: 4}, zap.NewNop())

	n, err := b.EmbedChat(context.Background(), chatID)
	if err == nil || n != 0 {
		t.Fatalf("EmbedChat = %d, %v; want 0 and an error", n, err)
	}
	if emb.calls != maxConsecutiveFailures {
		t.Errorf("embedder called %d times, want %d", emb.calls, maxConsecutiveFailures)
	}
}

func TestEmbedChatStopsOnCancel(t *testing.T) {
	repo, chatID := seed(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBackfiller(repo, &stubEmbedder{}, Config{}, zap.NewNop())
	if _, err := b.EmbedChat(ctx, chatID); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
