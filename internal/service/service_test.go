package service

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const sampleTranscript = `12/31/20, 10:00 PM - Alice: Happy new year!
12/31/20, 10:01 PM - Bob: Same to you
12/31/20, 10:02 PM - Carol: 🎉
Messages and calls are end-to-end encrypted.
12/31/20, 10:03 PM - Dave: who brought the cake
12/31/20, 10:04 PM - Erin: me
1/1/21, 9:00 AM - Alice: ugh
`

type testEnv struct {
	chats    repository.ChatRepository
	sessions repository.SessionRepository
}

func newTestEnv(t *testing.T) *testEnv {
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
	return &testEnv{
		chats:    repository.NewChatRepository(db, logger),
		sessions: repository.NewSessionRepository(db, logger),
	}
}

func (e *testEnv) importSample(t *testing.T, text string) *ImportResult {
	t.Helper()
	res, err := NewImporter(e.chats, nil, zap.NewNop()).Import(context.Background(), ImportInput{
		ChatName:   "new year",
		Uploader:   "alice",
		Transcript: strings.NewReader(text),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return res
}

type fakeEmbedder struct {
	n   int
	err error
}

func (f *fakeEmbedder) EmbedChat(ctx context.Context, groupChatID int64) (int, error) {
	return f.n, f.err
}

type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *memGuard) Redeem(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *memGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, key)
	return nil
}

// failingAnswers fails the first CreateAnswer call.
type failingAnswers struct {
	repository.SessionRepository
	failed bool
}

func (f *failingAnswers) CreateAnswer(ctx context.Context, a *models.SessionAnswer) error {
	if !f.failed {
		f.failed = true
		return &repository.StoreError{Op: "create answer", Err: errors.New("disk full")}
	}
	return f.SessionRepository.CreateAnswer(ctx, a)
}

// failingTx fails CreateMessage inside a transaction.
type failingTx struct {
	repository.ChatRepository
}

func (f failingTx) WithTx(ctx context.Context, fn func(repository.ChatRepository) error) error {
	return f.ChatRepository.WithTx(ctx, func(tx repository.ChatRepository) error {
		return fn(failingMessages{tx})
	})
}

type failingMessages struct {
	repository.ChatRepository
}

func (failingMessages) CreateMessage(ctx context.Context, groupChatID, participantID int64, ts time.Time, text string) (*models.Message, error) {
	return nil, &repository.StoreError{Op: "create message", Err: errors.New("disk full")}
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := NewImporter(env.chats, &fakeEmbedder{n: 6}, zap.NewNop()).Import(ctx, ImportInput{
		ChatName:   "new year",
		Uploader:   "alice",
		Transcript: strings.NewReader(sampleTranscript),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.MessageCount != 6 {
		t.Errorf("MessageCount = %d, want 6", res.MessageCount)
	}
	if got := strings.Join(res.Participants, ","); got != "Alice,Bob,Carol,Dave,Erin" {
		t.Errorf("Participants = %s", got)
	}
	if res.EmbeddedCount != 6 || res.EmbeddingPending {
		t.Errorf("embedding = %d pending=%v", res.EmbeddedCount, res.EmbeddingPending)
	}

	msgs, err := env.chats.GetMessagesByGroupChat(ctx, res.GroupChatID)
	if err != nil {
		t.Fatalf("GetMessagesByGroupChat: %v", err)
	}
	if len(msgs) != 6 || msgs[0].MessageText != "Happy new year!" {
		t.Errorf("stored messages = %d, first = %+v", len(msgs), msgs[0])
	}
	parts, _ := env.chats.GetParticipantsByGroupChat(ctx, res.GroupChatID)
	if msgs[5].ParticipantID != parts[0].ID {
		t.Errorf("last message author = %d, want Alice (%d)", msgs[5].ParticipantID, parts[0].ID)
	}
}

func TestImportEmbeddingFailureKeepsChat(t *testing.T) {
	env := newTestEnv(t)
	res, err := NewImporter(env.chats, &fakeEmbedder{n: 2, err: errors.New("ollama down")}, zap.NewNop()).Import(
		context.Background(), ImportInput{ChatName: "c", Uploader: "u", Transcript: strings.NewReader(sampleTranscript)})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !res.EmbeddingPending || res.EmbeddedCount != 2 {
		t.Errorf("result = %+v, want pending with 2 embedded", res)
	}
}

func TestImportRollsBackOnStoreError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := NewImporter(failingTx{env.chats}, nil, zap.NewNop()).Import(ctx, ImportInput{
		ChatName: "c", Uploader: "u", Transcript: strings.NewReader(sampleTranscript),
	})
	var se *repository.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if _, err := env.chats.GetGroupChat(ctx, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("group chat survived failed import: %v", err)
	}
	parts, _ := env.chats.GetParticipantsByGroupChat(ctx, 1)
	if len(parts) != 0 {
		t.Errorf("participants survived failed import: %d", len(parts))
	}
}

func TestImportValidation(t *testing.T) {
	env := newTestEnv(t)
	imp := NewImporter(env.chats, nil, zap.NewNop())
	cases := []ImportInput{
		{ChatName: "", Uploader: "u", Transcript: strings.NewReader("")},
		{ChatName: "c", Uploader: "  ", Transcript: strings.NewReader("")},
		{ChatName: "c", Uploader: "u"},
	}
	for i, in := range cases {
		if _, err := imp.Import(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestImportWithoutEmbedderLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	res := env.importSample(t, sampleTranscript)
	if !res.EmbeddingPending {
		t.Error("EmbeddingPending = false, want true without an embedder")
	}
	empty := env.importSample(t, "not a transcript\n")
	if empty.MessageCount != 0 || empty.EmbeddingPending || len(empty.Participants) != 0 {
		t.Errorf("empty import = %+v", empty)
	}
}

func TestJoinLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.importSample(t, sampleTranscript)
	mgr := NewSessionManager(env.chats, env.sessions, zap.NewNop())

	if _, err := mgr.CreateSession(ctx, res.GroupChatID+99, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateSession on missing chat: %v", err)
	}
	session, err := mgr.CreateSession(ctx, res.GroupChatID, "alice")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := mgr.RequestJoin(ctx, session.ID+99, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RequestJoin on missing session: %v", err)
	}
	req, err := mgr.RequestJoin(ctx, session.ID, "bob")
	if err != nil {
		t.Fatalf("RequestJoin: %v", err)
	}
	if req.Status != models.JoinStatusPending {
		t.Errorf("status = %q, want pending", req.Status)
	}

	decided, err := mgr.DecideJoin(ctx, req.ID, true)
	if err != nil {
		t.Fatalf("DecideJoin: %v", err)
	}
	if decided.Status != models.JoinStatusApproved || decided.RespondedAt == nil {
		t.Errorf("decided = %+v", decided)
	}

	if _, err := mgr.DecideJoin(ctx, req.ID, false); !errors.Is(err, ErrJoinRequestDecided) {
		t.Errorf("second decision err = %v, want ErrJoinRequestDecided", err)
	}
	again, _ := env.sessions.GetJoinRequest(ctx, req.ID)
	if again.Status != models.JoinStatusApproved {
		t.Errorf("status after rejected transition = %q", again.Status)
	}

	if _, err := mgr.DecideJoin(ctx, req.ID+99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("DecideJoin missing err = %v", err)
	}

	other, _ := mgr.RequestJoin(ctx, session.ID, "carol")
	declined, err := mgr.DecideJoin(ctx, other.ID, false)
	if err != nil || declined.Status != models.JoinStatusDeclined {
		t.Fatalf("decline = %+v, %v", declined, err)
	}

	list, err := mgr.ListJoinRequests(ctx, session.ID, models.JoinStatusDeclined)
	if err != nil || len(list) != 1 || list[0].RequestedByUsername != "carol" {
		t.Errorf("ListJoinRequests = %+v, %v", list, err)
	}
	if _, err := mgr.ListJoinRequests(ctx, session.ID, "maybe"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown status err = %v", err)
	}
}

func makeCorpus(n int) ([]*models.Message, []*models.Participant) {
	var participants []*models.Participant
	var messages []*models.Message
	for i := 1; i <= n; i++ {
		participants = append(participants, &models.Participant{ID: int64(i), NameOnWhatsApp: string(rune('A' + i - 1))})
		messages = append(messages, &models.Message{ID: int64(100 + i), ParticipantID: int64(i), MessageText: "m"})
	}
	return messages, participants
}

func TestBuildRoundOptionCount(t *testing.T) {
	tests := []struct {
		participants int
		want         int
	}{
		{2, 2},
		{3, 3},
		{4, 4},
		{5, 4},
		{12, 4},
	}
	for _, tt := range tests {
		messages, participants := makeCorpus(tt.participants)
		for seed := int64(0); seed < 50; seed++ {
			rng := rand.New(rand.NewSource(seed))
			msg, options, err := buildRound(rng, messages, participants)
			if err != nil {
				t.Fatalf("buildRound(%d participants): %v", tt.participants, err)
			}
			if len(options) != tt.want {
				t.Fatalf("%d participants: got %d options, want %d", tt.participants, len(options), tt.want)
			}

			seen := make(map[int64]bool)
			correct := 0
			for _, o := range options {
				if seen[o.ParticipantID] {
					t.Fatalf("duplicate option %d", o.ParticipantID)
				}
				seen[o.ParticipantID] = true
				if o.ParticipantID == msg.ParticipantID {
					correct++
				}
			}
			if correct != 1 {
				t.Fatalf("correct participant appears %d times", correct)
			}
		}
	}
}

func TestBuildRoundShufflesCorrectPosition(t *testing.T) {
	messages, participants := makeCorpus(5)
	positions := make(map[int]bool)
	for seed := int64(0); seed < 200; seed++ {
		msg, options, _ := buildRound(rand.New(rand.NewSource(seed)), messages, participants)
		for i, o := range options {
			if o.ParticipantID == msg.ParticipantID {
				positions[i] = true
			}
		}
	}
	if len(positions) != 4 {
		t.Errorf("correct answer appeared in positions %v, want all 4", positions)
	}
}

func TestBuildRoundEmptyCorpus(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	messages, participants := makeCorpus(1)
	if _, _, err := buildRound(rng, messages, participants); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("one participant: err = %v, want ErrEmptyCorpus", err)
	}
	_, participants = makeCorpus(3)
	if _, _, err := buildRound(rng, nil, participants); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("no messages: err = %v, want ErrEmptyCorpus", err)
	}
}

func newQuiz(t *testing.T, env *testEnv, guard RoundGuard, cfg QuizConfig) *QuizService {
	t.Helper()
	signer, err := NewRoundSigner("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewRoundSigner: %v", err)
	}
	return NewQuizService(env.chats, env.sessions, signer, guard, rand.NewSource(7), cfg, zap.NewNop())
}

func TestQuizRoundAndScoring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.importSample(t, sampleTranscript)
	session, _ := NewSessionManager(env.chats, env.sessions, zap.NewNop()).CreateSession(ctx, res.GroupChatID, "alice")
	quiz := newQuiz(t, env, &memGuard{}, QuizConfig{})

	round, err := quiz.NextRound(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	if len(round.Options) != 4 || round.Token == "" {
		t.Fatalf("round = %+v", round)
	}
	msg, _ := env.chats.GetMessageByID(ctx, round.MessageID)

	var wrong int64
	for _, o := range round.Options {
		if o.ParticipantID != msg.ParticipantID {
			wrong = o.ParticipantID
			break
		}
	}

	got, err := quiz.SubmitAnswer(ctx, session.ID, models.SubmitAnswerInput{
		PlayerUsername: "bob", MessageID: msg.ID, SelectedParticipantID: msg.ParticipantID, RoundToken: round.Token,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !got.IsCorrect || got.CorrectParticipantID != msg.ParticipantID || got.CorrectAnswer == "" {
		t.Errorf("correct answer result = %+v", got)
	}

	got, err = quiz.SubmitAnswer(ctx, session.ID, models.SubmitAnswerInput{
		PlayerUsername: "carol", MessageID: msg.ID, SelectedParticipantID: wrong, RoundToken: round.Token,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if got.IsCorrect {
		t.Error("wrong selection scored as correct")
	}

	// Unknown participant ids are just wrong.
	got, err = quiz.SubmitAnswer(ctx, session.ID, models.SubmitAnswerInput{
		PlayerUsername: "dave", MessageID: msg.ID, SelectedParticipantID: 9999,
	})
	if err != nil || got.IsCorrect {
		t.Errorf("unknown participant = %+v, %v", got, err)
	}

	scores, err := quiz.Scoreboard(ctx, session.ID)
	if err != nil {
		t.Fatalf("Scoreboard: %v", err)
	}
	if len(scores) != 3 || scores[0].PlayerUsername != "bob" || scores[0].Correct != 1 {
		t.Errorf("scoreboard = %+v", scores)
	}
}

func TestQuizRoundTokenChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.importSample(t, sampleTranscript)
	session, _ := NewSessionManager(env.chats, env.sessions, zap.NewNop()).CreateSession(ctx, res.GroupChatID, "alice")
	quiz := newQuiz(t, env, &memGuard{}, QuizConfig{RequireRoundToken: true})

	round, err := quiz.NextRound(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	in := models.SubmitAnswerInput{PlayerUsername: "bob", MessageID: round.MessageID, SelectedParticipantID: 1}

	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); !errors.Is(err, ErrInvalidRoundToken) {
		t.Errorf("missing token err = %v", err)
	}

	in.RoundToken = round.Token + "x"
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); !errors.Is(err, ErrInvalidRoundToken) {
		t.Errorf("tampered token err = %v", err)
	}

	msgs, _ := env.chats.GetMessagesByGroupChat(ctx, res.GroupChatID)
	var otherID int64
	for _, m := range msgs {
		if m.ID != round.MessageID {
			otherID = m.ID
			break
		}
	}
	mismatch := in
	mismatch.RoundToken = round.Token
	mismatch.MessageID = otherID
	if _, err := quiz.SubmitAnswer(ctx, session.ID, mismatch); !errors.Is(err, ErrInvalidRoundToken) {
		t.Errorf("mismatched message err = %v", err)
	}

	in.RoundToken = round.Token
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); !errors.Is(err, ErrRoundAlreadyAnswered) {
		t.Errorf("replay err = %v, want ErrRoundAlreadyAnswered", err)
	}
	// Another player may answer the same round.
	in.PlayerUsername = "carol"
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); err != nil {
		t.Errorf("second player: %v", err)
	}
}

func TestQuizNotFoundAndEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quiz := newQuiz(t, env, nil, QuizConfig{})
	mgr := NewSessionManager(env.chats, env.sessions, zap.NewNop())

	if _, err := quiz.NextRound(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("NextRound missing session err = %v", err)
	}

	lonely := env.importSample(t, "12/31/20, 10:00 PM - Alice: anyone?\n")
	session, _ := mgr.CreateSession(ctx, lonely.GroupChatID, "alice")
	_, err := quiz.NextRound(ctx, session.ID)
	var ec *EmptyCorpusError
	if !errors.As(err, &ec) || ec.GroupChatID != lonely.GroupChatID {
		t.Errorf("single participant err = %v, want EmptyCorpusError for chat %d", err, lonely.GroupChatID)
	}

	empty := env.importSample(t, "")
	session, _ = mgr.CreateSession(ctx, empty.GroupChatID, "alice")
	if _, err := quiz.NextRound(ctx, session.ID); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("no messages err = %v", err)
	}

	_, err = quiz.SubmitAnswer(ctx, session.ID, models.SubmitAnswerInput{PlayerUsername: "bob", MessageID: 12345})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing message err = %v", err)
	}
}

func TestRoundSignerExpiry(t *testing.T) {
	signer, err := NewRoundSigner("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewRoundSigner: %v", err)
	}
	start := time.Now()
	signer.now = func() time.Time { return start }

	token, _, err := signer.Sign(1, 2, []int64{3, 4})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.SessionID != 1 || claims.MessageID != 2 || len(claims.Options) != 2 || claims.ID == "" {
		t.Errorf("claims = %+v", claims)
	}

	signer.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidRoundToken) {
		t.Errorf("expired token err = %v", err)
	}

	other, _ := NewRoundSigner("another secret", time.Minute)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidRoundToken) {
		t.Errorf("foreign key err = %v", err)
	}
}

func TestQuizReleasesTokenWhenAnswerNotStored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.importSample(t, sampleTranscript)
	session, _ := NewSessionManager(env.chats, env.sessions, zap.NewNop()).CreateSession(ctx, res.GroupChatID, "alice")

	signer, _ := NewRoundSigner("test-secret", time.Minute)
	sessions := &failingAnswers{SessionRepository: env.sessions}
	quiz := NewQuizService(env.chats, sessions, signer, &memGuard{}, rand.NewSource(7), QuizConfig{}, zap.NewNop())

	round, err := quiz.NextRound(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	in := models.SubmitAnswerInput{
		PlayerUsername:        "bob",
		MessageID:             round.MessageID,
		SelectedParticipantID: round.Options[0].ParticipantID,
		RoundToken:            round.Token,
	}

	var storeErr *repository.StoreError
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); !errors.As(err, &storeErr) {
		t.Fatalf("first submit err = %v, want StoreError", err)
	}
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); err != nil {
		t.Fatalf("retry after failed store: %v", err)
	}
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); !errors.Is(err, ErrRoundAlreadyAnswered) {
		t.Errorf("replay after stored answer err = %v", err)
	}
}

func TestQuizLogsAnswerOutsideOptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.importSample(t, sampleTranscript)
	session, _ := NewSessionManager(env.chats, env.sessions, zap.NewNop()).CreateSession(ctx, res.GroupChatID, "alice")

	core, logs := observer.New(zap.InfoLevel)
	signer, _ := NewRoundSigner("test-secret", time.Minute)
	quiz := NewQuizService(env.chats, env.sessions, signer, nil, rand.NewSource(7), QuizConfig{}, zap.New(core))

	round, err := quiz.NextRound(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	in := models.SubmitAnswerInput{PlayerUsername: "bob", MessageID: round.MessageID, RoundToken: round.Token}

	in.SelectedParticipantID = round.Options[0].ParticipantID
	if _, err := quiz.SubmitAnswer(ctx, session.ID, in); err != nil {
		t.Fatalf("offered answer: %v", err)
	}
	if n := logs.FilterMessage("Answer outside the offered options").Len(); n != 0 {
		t.Fatalf("offered answer logged %d times", n)
	}

	in.PlayerUsername = "carol"
	in.SelectedParticipantID = 99999
	result, err := quiz.SubmitAnswer(ctx, session.ID, in)
	if err != nil {
		t.Fatalf("non-offered answer: %v", err)
	}
	if result.IsCorrect {
		t.Error("non-offered answer scored as correct")
	}
	if n := logs.FilterMessage("Answer outside the offered options").Len(); n != 1 {
		t.Errorf("non-offered answer logged %d times, want 1", n)
	}
}

func TestNextRoundNoMessagesReportsParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chat, err := env.chats.CreateGroupChat(ctx, "quiet", "alice")
	if err != nil {
		t.Fatalf("CreateGroupChat: %v", err)
	}
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := env.chats.CreateParticipant(ctx, chat.ID, name); err != nil {
			t.Fatalf("CreateParticipant: %v", err)
		}
	}
	session, _ := NewSessionManager(env.chats, env.sessions, zap.NewNop()).CreateSession(ctx, chat.ID, "alice")

	_, err = newQuiz(t, env, nil, QuizConfig{}).NextRound(ctx, session.ID)
	var ec *EmptyCorpusError
	if !errors.As(err, &ec) {
		t.Fatalf("err = %v, want EmptyCorpusError", err)
	}
	if ec.GroupChatID != chat.ID || ec.Messages != 0 || ec.Participants != 2 {
		t.Errorf("EmptyCorpusError = %+v, want chat %d with 0 messages and 2 participants", ec, chat.ID)
	}
}
