package notifier

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"rukami/internal/models"
	"rukami/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

type fakeProducts struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    []time.Time
}

func (f *fakeProducts) NewProductsSince(_ context.Context, since time.Time) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, since)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Product
	for _, p := range f.products {
		if p.CreatedAt.After(since) && p.InStock {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubscribers struct {
	users []models.User
	err   error
}

func (f *fakeSubscribers) ListSubscribers(context.Context) ([]models.User, error) {
	return f.users, f.err
}

type recordingSender struct {
	mu        sync.Mutex
	sent      []Message
	failPhoto bool
	failChat  int64
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ChatID == s.failChat {
		return errors.New("chat blocked the bot")
	}
	if msg.PhotoURL != "" && s.failPhoto {
		return errors.New("wrong file identifier")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func chat(id int64) *int64 { return &id }

func product(id uint, created time.Time, image string) models.Product {
	return models.Product{
		ID:          id,
		Name:        "Ваза",
		Description: "Керамика",
		Price:       decimal.RequireFromString("3500"),
		Author:      "Мастер",
		ImageURL:    image,
		InStock:     true,
		CreatedAt:   created,
		Category:    &models.Category{Name: "Керамика"},
	}
}

func newTestNotifier(products ProductSource, subs SubscriberSource, sender Sender, now time.Time) *Notifier {
	n := New(products, subs, sender, time.Minute, 0)
	n.now = func() time.Time { return now }
	return n
}

func TestTick_OnlyProductsAfterWatermark(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeProducts{products: []models.Product{
		product(1, t0.Add(-time.Second), ""),
		product(2, t0.Add(time.Second), ""),
	}}
	sender := &recordingSender{}
	n := newTestNotifier(src, &fakeSubscribers{users: []models.User{{TelegramID: chat(10)}}}, sender, t0.Add(time.Minute))
	n.watermark = t0

	require.NoError(t, n.Tick(context.Background()))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(10), sender.sent[0].ChatID)
	assert.Equal(t, "product_2", sender.sent[0].Buttons[0][0].Data)
	assert.Equal(t, t0.Add(time.Minute), n.Watermark())
}

func TestTick_FirstTickLooksBackOneHour(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeProducts{}
	n := newTestNotifier(src, &fakeSubscribers{}, &recordingSender{}, now)

	require.NoError(t, n.Tick(context.Background()))

	require.Len(t, src.calls, 1)
	assert.Equal(t, now.Add(-time.Hour), src.calls[0])
	assert.Equal(t, now, n.Watermark())
}

func TestTick_QueryErrorKeepsWatermark(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeProducts{err: errors.New("connection refused")}
	n := newTestNotifier(src, &fakeSubscribers{}, &recordingSender{}, t0.Add(time.Minute))
	n.watermark = t0

	assert.Error(t, n.Tick(context.Background()))
	assert.Equal(t, t0, n.Watermark())
}

func TestTick_SubscriberErrorKeepsWatermark(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeProducts{products: []models.Product{product(1, t0.Add(time.Second), "")}}
	n := newTestNotifier(src, &fakeSubscribers{err: errors.New("boom")}, &recordingSender{}, t0.Add(time.Minute))
	n.watermark = t0

	assert.Error(t, n.Tick(context.Background()))
	assert.Equal(t, t0, n.Watermark())
}

func TestTick_FanOutAndFailures(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeProducts{products: []models.Product{
		product(1, t0.Add(time.Second), "https://cdn.example.com/a.jpg"),
		product(2, t0.Add(2*time.Second), ""),
	}}
	subs := &fakeSubscribers{users: []models.User{
		{TelegramID: chat(1)},
		{TelegramID: chat(2)},
		{Name: "no telegram"},
	}}
	sender := &recordingSender{failPhoto: true, failChat: 2}
	n := newTestNotifier(src, subs, sender, t0.Add(time.Minute))
	n.watermark = t0

	require.NoError(t, n.Tick(context.Background()))

	// Chat 2 fails every time, chat 1 gets a text fallback for the photo.
	require.Len(t, sender.sent, 2)
	assert.Empty(t, sender.sent[0].PhotoURL)
	assert.Contains(t, sender.sent[0].Text, ImageUnavailableNote)
	assert.NotContains(t, sender.sent[1].Text, ImageUnavailableNote)
	assert.Equal(t, t0.Add(time.Minute), n.Watermark())
}

func TestProductMessage(t *testing.T) {
	p := product(7, time.Now(), "/uploads/x.png")
	p.Name = "Шарф_вязаный"

	msg := ProductMessage(42, &p)

	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "/uploads/x.png", msg.PhotoURL)
	assert.Contains(t, msg.Text, "3500.00 ₽")
	assert.Contains(t, msg.Text, `Шарф\_вязаный`)
	assert.Contains(t, msg.Text, "Керамика")
	assert.Contains(t, msg.Text, "Мастер")
	assert.Equal(t, "catalog", msg.Buttons[1][0].Data)
}

func TestRun_WakeAndCancel(t *testing.T) {
	src := &fakeProducts{}
	n := New(src, &fakeSubscribers{}, &recordingSender{}, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	n.Wake()
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWake_DoesNotBlock(t *testing.T) {
	n := New(&fakeProducts{}, &fakeSubscribers{}, &recordingSender{}, time.Hour, 0)
	n.Wake()
	n.Wake()
	n.Wake()
}
