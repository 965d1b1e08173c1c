package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"product-advisor-be/internal/config"
	"product-advisor-be/internal/constant"
	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/internal/repository/memory"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/funnel"
	"product-advisor-be/pkg/llm"
	"product-advisor-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func (f *fakeProductRepo) Create(context.Context, *entity.Product) error { return nil }
func (f *fakeProductRepo) Upsert(context.Context, *entity.Product) error { return nil }
func (f *fakeProductRepo) Update(context.Context, *entity.Product) error { return nil }
func (f *fakeProductRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (f *fakeProductRepo) DeleteByArticle(context.Context, string) error { return nil }
func (f *fakeProductRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return f.products[byId.ID], nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Product, error) {
	var all []*entity.Product
	for _, p := range f.products {
		all = append(all, p)
	}
	return all, nil
}

type fakeUow struct {
	products *fakeProductRepo
}

func (f *fakeUow) Begin(context.Context) error { return nil }
func (f *fakeUow) Commit() error               { return nil }
func (f *fakeUow) Rollback() error             { return nil }
func (f *fakeUow) ProductRepository() contract.ProductRepository {
	return f.products
}
func (f *fakeUow) ProductEmbeddingRepository() contract.ProductEmbeddingRepository {
	return nil
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type scriptedSearcher struct {
	respond func(predicate funnel.Predicate) []retrieval.Hit
}

func (s *scriptedSearcher) Search(_ context.Context, _ string, _ int, predicate funnel.Predicate) ([]retrieval.Hit, error) {
	return s.respond(predicate), nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return f.reply, f.err
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) SendLeadNotification(sessionId, _, _ string, _ []string) error {
	f.sent <- sessionId
	return nil
}

// --- harness ---

type harness struct {
	svc     IChatService
	product *entity.Product
	mailer  *fakeMailer
}

func newHarness(t *testing.T, searcher retrieval.Searcher, provider llm.Provider) *harness {
	t.Helper()

	product := &entity.Product{
		Id:          uuid.New(),
		Article:     "VRK-100",
		Name:        "Решетка вентиляционная 300x500",
		Url:         "https://shop.example.com/vrk-100",
		Price:       "1 250 руб.",
		ProductType: "grille",
		Location:    "outdoor",
		Material:    "metal",
		SizeGroup:   "small",
	}

	m := &fakeMailer{sent: make(chan string, 1)}
	svc := NewChatService(
		&fakeUowFactory{uow: &fakeUow{products: &fakeProductRepo{
			products: map[uuid.UUID]*entity.Product{product.Id: product},
		}}},
		memory.NewSessionRepository(time.Minute),
		searcher,
		provider,
		m,
		config.ManagerConfig{Phone: "+7 (800) 555-00-11", Email: "sales@vrk.example"},
		nopLogger{},
	)

	return &harness{svc: svc, product: product, mailer: m}
}

func (h *harness) send(t *testing.T, sessionId, message string) *dto.ChatResponse {
	t.Helper()
	res, err := h.svc.HandleMessage(context.Background(), &dto.ChatRequest{
		SessionId: sessionId,
		Message:   message,
		Source:    "web",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func hitFor(p *entity.Product, distance float64) retrieval.Hit {
	return retrieval.Hit{
		ID:       p.Id.String(),
		Text:     p.Name,
		Distance: distance,
	}
}

func noHits(funnel.Predicate) []retrieval.Hit { return nil }

// --- scenarios ---

func TestStartTriggerOpensFunnel(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	res := h.send(t, "s1", "подбор")

	assert.Equal(t, constant.ActionAskQuestion, res.Action)
	assert.Contains(t, res.Reply, "Какой тип продукции")
	require.NotEmpty(t, res.Buttons)
	assert.Equal(t, "grille", res.Buttons[0].Payload)
}

func TestStartTriggerIsPlainTextMidFunnel(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	h.send(t, "s1", "grille")
	res := h.send(t, "s1", "начать")

	// Criteria survive; the pending step is re-asked instead of a restart.
	assert.Contains(t, res.Reply, "Где будет установка?")
	assert.NotContains(t, res.Reply, "Какой тип продукции")
}

func TestMainMenuSentinelIsIdempotent(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	first := h.send(t, "s1", constant.SentinelMainMenu)
	second := h.send(t, "s1", constant.SentinelMainMenu)

	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, first.Buttons, second.Buttons)
}

func TestButtonSelectionAdvancesFunnel(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "grille")

	assert.Equal(t, constant.ActionAskQuestion, res.Action)
	assert.Contains(t, res.Reply, "Где будет установка?")
}

func TestAcknowledgeDescribesOnlyNewCriteria(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	h.send(t, "s1", "grille")
	res := h.send(t, "s1", "наружная")

	assert.Contains(t, res.Reply, "Понял вас: Фасад / Улица.")
	assert.NotContains(t, res.Reply, "Вентиляционные решетки")
}

func TestFreeTextCompletesFunnelAndShowsProduct(t *testing.T) {
	searcher := &scriptedSearcher{respond: noHits}
	h := newHarness(t, searcher, &fakeLLM{reply: "Отличный вариант под ваши параметры."})
	searcher.respond = func(predicate funnel.Predicate) []retrieval.Hit {
		return []retrieval.Hit{hitFor(h.product, 0.2)}
	}

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "нужна наружная металлическая решетка 300х500")

	assert.Equal(t, constant.ActionShowProduct, res.Action)
	require.NotNil(t, res.ProductData)
	assert.Equal(t, "VRK-100", res.ProductData.Article)
	// The reply is phrased by the LLM, grounded on the hits.
	assert.Contains(t, res.Reply, "Отличный вариант")
}

func TestMatchReplyFallsBackToCardOnLLMFailure(t *testing.T) {
	searcher := &scriptedSearcher{respond: noHits}
	h := newHarness(t, searcher, &fakeLLM{err: errors.New("model down")})
	searcher.respond = func(funnel.Predicate) []retrieval.Hit {
		return []retrieval.Hit{hitFor(h.product, 0.2)}
	}

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "нужна наружная металлическая решетка 300х500")

	assert.Equal(t, constant.ActionShowProduct, res.Action)
	require.NotNil(t, res.ProductData)
	assert.Contains(t, res.Reply, h.product.Name)
	assert.Contains(t, res.Reply, "1 250 руб.")
}

func TestRelaxationSurfacesCloseMatch(t *testing.T) {
	var h *harness
	searcher := &scriptedSearcher{respond: func(predicate funnel.Predicate) []retrieval.Hit {
		// Strict search finds nothing; dropping size_group opens it up.
		if _, strict := predicate[funnel.KeySizeGroup]; strict {
			return nil
		}
		return []retrieval.Hit{hitFor(h.product, 0.35)}
	}}
	h = newHarness(t, searcher, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "нужна наружная металлическая решетка 1500x1500")

	assert.Equal(t, constant.ActionShowProduct, res.Action)
	assert.Contains(t, res.Reply, constant.RelaxedResultsPrefix)
	require.NotNil(t, res.ProductData)
}

func TestDistantTerminalHitIsStillPresented(t *testing.T) {
	var h *harness
	searcher := &scriptedSearcher{respond: func(funnel.Predicate) []retrieval.Hit {
		return []retrieval.Hit{hitFor(h.product, 0.92)}
	}}
	h = newHarness(t, searcher, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "нужна наружная металлическая решетка 300х500")

	// Funnel completion shows whatever the index ranked first; the distance
	// threshold applies only to free-question answers.
	assert.Equal(t, constant.ActionShowProduct, res.Action)
	require.NotNil(t, res.ProductData)
	assert.Equal(t, "VRK-100", res.ProductData.Article)
}

func TestEmptyTerminalRetrievalOffersHandoff(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "нужна наружная металлическая решетка 300х500")

	assert.Equal(t, constant.ActionContactManager, res.Action)
	assert.Nil(t, res.ProductData)
	assert.Contains(t, res.Reply, constant.NoResultsMessage)
	assert.Contains(t, res.Reply, "+7 (800) 555-00-11")

	// The funnel is reset, not stuck at the last step.
	next := h.send(t, "s1", "подбор")
	assert.Contains(t, next.Reply, "Какой тип продукции")
}

func TestManagerHandoffResetsCriteria(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	h.send(t, "s1", "grille")
	res := h.send(t, "s1", "позовите менеджера")

	assert.Equal(t, constant.ActionContactManager, res.Action)
	assert.Contains(t, res.Reply, "+7 (800) 555-00-11")

	select {
	case sessionId := <-h.mailer.sent:
		assert.Equal(t, "s1", sessionId)
	case <-time.After(2 * time.Second):
		t.Fatal("lead notification was not sent")
	}

	// Next message starts clean: the funnel does not resume mid-way.
	next := h.send(t, "s1", "подбор")
	assert.Contains(t, next.Reply, "Какой тип продукции")
}

func TestOutOfFunnelQuestionRepromptsStep(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "Доставка по всей России."})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "а вы доставляете в Казань?")

	assert.Equal(t, constant.ActionAskQuestion, res.Action)
	assert.Contains(t, res.Reply, "Доставка по всей России.")
	assert.Contains(t, res.Reply, "Какой тип продукции", "the pending step is re-asked")
}

func TestFreeQuestionShowsCloseProduct(t *testing.T) {
	var h *harness
	searcher := &scriptedSearcher{respond: func(funnel.Predicate) []retrieval.Hit {
		return []retrieval.Hit{hitFor(h.product, 0.2)}
	}}
	h = newHarness(t, searcher, &fakeLLM{reply: "Есть такая решетка."})

	// No funnel started: plain question with a close top hit.
	res := h.send(t, "s1", "а вы доставляете в Казань?")

	assert.Equal(t, constant.ActionShowProduct, res.Action)
	require.NotNil(t, res.ProductData)
	assert.Equal(t, "VRK-100", res.ProductData.Article)
	assert.Contains(t, res.Reply, "Есть такая решетка.")
}

func TestFreeQuestionRejectsDistantProduct(t *testing.T) {
	var h *harness
	searcher := &scriptedSearcher{respond: func(funnel.Predicate) []retrieval.Hit {
		return []retrieval.Hit{hitFor(h.product, 0.92)}
	}}
	h = newHarness(t, searcher, &fakeLLM{reply: "Не уверен."})

	res := h.send(t, "s1", "а вы доставляете в Казань?")

	assert.Equal(t, constant.ActionAskQuestion, res.Action)
	assert.Nil(t, res.ProductData)
}

func TestLLMFailureFallsBackToApology(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{err: errors.New("model down")})

	h.send(t, "s1", constant.SentinelMainMenu)
	res := h.send(t, "s1", "а вы доставляете в Казань?")

	assert.Equal(t, constant.ActionAskQuestion, res.Action)
	assert.Equal(t, constant.ApologyMessage, res.Reply)

	// The conversation survives the failure.
	next := h.send(t, "s1", "grille")
	assert.Contains(t, next.Reply, "Где будет установка?")
}

func TestBackSentinelReopensPreviousStep(t *testing.T) {
	h := newHarness(t, &scriptedSearcher{respond: noHits}, &fakeLLM{reply: "ok"})

	h.send(t, "s1", constant.SentinelMainMenu)
	h.send(t, "s1", "grille")
	res := h.send(t, "s1", constant.SentinelBack)

	assert.Contains(t, res.Reply, "Какой тип продукции")
}
