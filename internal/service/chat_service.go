package service

import (
	"context"
	"fmt"
	"strings"

	"product-advisor-be/internal/config"
	"product-advisor-be/internal/constant"
	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/entity"
	"product-advisor-be/internal/pkg/logger"
	"product-advisor-be/internal/pkg/mailer"
	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/internal/repository/specification"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/pkg/funnel"
	"product-advisor-be/pkg/llm"
	"product-advisor-be/pkg/retrieval"
	"product-advisor-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	HandleMessage(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	ResetSession(ctx context.Context, sessionId string) (*dto.ChatResponse, error)
}

// chatService is the conversation engine: it owns the funnel flow, the
// retrieval handoff and the out-of-funnel Q&A. All session mutation happens
// under a per-session lock, so concurrent requests for one conversation are
// strictly serialized while different conversations proceed in parallel.
type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	sessionRepo  contract.SessionRepository
	llmProvider  llm.Provider
	emailService mailer.IEmailService
	manager      config.ManagerConfig
	logger       logger.ILogger

	machine   *funnel.Machine
	extractor *funnel.Extractor
	policy    *retrieval.Policy

	sessionLocks *keyedMutex
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo contract.SessionRepository,
	searcher retrieval.Searcher,
	llmProvider llm.Provider,
	emailService mailer.IEmailService,
	manager config.ManagerConfig,
	sysLogger logger.ILogger,
) IChatService {
	vocab := funnel.DefaultVocabulary()

	return &chatService{
		uowFactory:   uowFactory,
		sessionRepo:  sessionRepo,
		llmProvider:  llmProvider,
		emailService: emailService,
		manager:      manager,
		logger:       sysLogger,
		machine:      funnel.NewMachine(vocab),
		extractor:    funnel.NewDefaultExtractor(),
		policy:       retrieval.NewPolicy(searcher, vocab.Order(), retrieval.DefaultLimit, policyLogger{sysLogger}),
		sessionLocks: newKeyedMutex(),
	}
}

// policyLogger forwards the retrieval policy's relaxation diagnostics to the
// structured logger.
type policyLogger struct {
	log logger.ILogger
}

func (p policyLogger) Printf(format string, args ...interface{}) {
	p.log.Info("retrieval", fmt.Sprintf(format, args...), nil)
}

// HandleMessage processes one user turn and returns the reply. The order of
// checks matters: control payloads first, then restart and handoff triggers,
// then funnel options, then free-text extraction, and only when nothing was
// recognized the message is treated as a question for the LLM.
func (cs *chatService) HandleMessage(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	unlock := cs.sessionLocks.Lock(request.SessionId)
	defer unlock()

	session := cs.sessionRepo.GetOrCreate(request.SessionId)
	if session.Source == "" {
		session.Source = request.Source
	}
	defer cs.sessionRepo.Save(session)

	text := strings.TrimSpace(request.Message)
	lower := strings.ToLower(text)

	// Control payloads bypass history and extraction entirely.
	switch text {
	case constant.SentinelMainMenu:
		return cs.startFunnel(session), nil
	case constant.SentinelBack:
		step := cs.machine.Back(session)
		return cs.askStep(step, ""), nil
	}

	session.AppendHistory(store.RoleUser, text, constant.MaxStoredHistory)

	// Start triggers only act outside the funnel; mid-funnel they fall
	// through, so accumulated criteria are never silently discarded.
	if session.CurrentStep == "" && isStartTrigger(lower) {
		return cs.startFunnel(session), nil
	}

	if containsTrigger(lower, constant.ContactManagerTriggers) {
		return cs.contactManager(session), nil
	}

	// Funnel option, by button payload or typed label.
	if answer, ok := cs.machine.Resolve(session, text); ok {
		next := cs.machine.ApplySelection(session, answer)
		if next == nil {
			return cs.completeFunnel(ctx, session)
		}
		return cs.recordReply(session, cs.askStep(next, "")), nil
	}

	// Free text: recognized criteria win over Q&A.
	if extracted := cs.extractor.Extract(lower); len(extracted) > 0 {
		next := cs.machine.ApplyExtraction(session, extracted)
		if next == nil {
			return cs.completeFunnel(ctx, session)
		}
		return cs.recordReply(session, cs.askStep(next, cs.acknowledge(extracted))), nil
	}

	return cs.answerQuestion(ctx, session, text)
}

// ResetSession is the explicit restart endpoint; equivalent to the main
// menu payload.
func (cs *chatService) ResetSession(ctx context.Context, sessionId string) (*dto.ChatResponse, error) {
	unlock := cs.sessionLocks.Lock(sessionId)
	defer unlock()

	session := cs.sessionRepo.GetOrCreate(sessionId)
	defer cs.sessionRepo.Save(session)

	return cs.startFunnel(session), nil
}

// startFunnel restarts the funnel from the first step. Calling it twice in
// a row yields the same state and the same reply.
func (cs *chatService) startFunnel(session *store.Session) *dto.ChatResponse {
	step := cs.machine.Start(session)
	return &dto.ChatResponse{
		Reply:   constant.WelcomeMessage + "\n\n" + step.Prompt,
		Action:  constant.ActionAskQuestion,
		Buttons: cs.stepButtons(step),
	}
}

func (cs *chatService) askStep(step *funnel.Step, ackPrefix string) *dto.ChatResponse {
	reply := step.Prompt
	if ackPrefix != "" {
		reply = ackPrefix + "\n\n" + reply
	}
	return &dto.ChatResponse{
		Reply:   reply,
		Action:  constant.ActionAskQuestion,
		Buttons: cs.stepButtons(step),
	}
}

// acknowledge describes only the criteria recognized in the current message,
// not everything accumulated so far.
func (cs *chatService) acknowledge(extracted map[string]string) string {
	described := cs.machine.Vocabulary().DescribeCriteria(extracted)
	if described == "" {
		return ""
	}
	return "Понял вас: " + described + "."
}

// completeFunnel runs retrieval with progressive relaxation and presents the
// top hit, phrased by the LLM over the full hit list. An empty terminal
// result hands the conversation over to a manager. Criteria are cleared
// afterwards so the next message starts a fresh search.
func (cs *chatService) completeFunnel(ctx context.Context, session *store.Session) (*dto.ChatResponse, error) {
	query := cs.machine.Vocabulary().BuildQuery(session.Criteria)

	result := cs.policy.Retrieve(ctx, query, session.Criteria)
	session.ResetFunnel()

	if len(result.Hits) == 0 {
		reply := constant.NoResultsMessage +
			"\n\nТелефон: " + cs.manager.Phone +
			"\nEmail: " + cs.manager.Email
		return cs.recordReply(session, &dto.ChatResponse{
			Reply:   reply,
			Action:  constant.ActionContactManager,
			Buttons: navButtons(),
		}), nil
	}

	top := result.Hits[0]
	productData, err := cs.loadProductData(ctx, top)
	if err != nil {
		cs.logger.Error("chat", "failed to load matched product", map[string]interface{}{
			"session_id": session.ID,
			"product_id": top.ID,
			"error":      err.Error(),
		})
		return cs.recordReply(session, &dto.ChatResponse{
			Reply:   constant.ApologyMessage,
			Action:  constant.ActionAskQuestion,
			Buttons: navButtons(),
		}), nil
	}

	var prefix string
	if len(result.RelaxedKeys) > 0 || result.Unfiltered {
		prefix = constant.RelaxedResultsPrefix + "\n\n"
	}

	reply, err := cs.composeMatchReply(ctx, session, query, result.Hits)
	if err != nil {
		cs.logger.Error("chat", "llm match phrasing failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		reply = productCard(productData)
	}

	return cs.recordReply(session, &dto.ChatResponse{
		Reply:       prefix + reply,
		Action:      constant.ActionShowProduct,
		ProductData: productData,
		Buttons:     navButtons(),
	}), nil
}

// composeMatchReply asks the LLM to phrase the recommendation, grounded on
// every retrieved hit, not just the one shown as the card.
func (cs *chatService) composeMatchReply(ctx context.Context, session *store.Session, query string, hits []retrieval.Hit) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(constant.AdvisorSystemPrompt, hitContext(hits))},
	}
	for _, msg := range session.RecentHistory(constant.LLMHistoryWindow) {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: "Клиент ищет: " + query + ". Подбери подходящий товар из контекста и кратко опиши его.",
	})
	return cs.llmProvider.Chat(ctx, messages)
}

func hitContext(hits []retrieval.Hit) string {
	var b strings.Builder
	for _, hit := range hits {
		b.WriteString(hit.Text + "\n---\n")
	}
	if b.Len() == 0 {
		return "(по запросу ничего не найдено)"
	}
	return b.String()
}

// productCard is the degradation path when the LLM cannot phrase the match.
func productCard(productData *dto.ProductData) string {
	var b strings.Builder
	b.WriteString(productData.Name)
	if productData.Price != "" {
		b.WriteString("\nЦена: " + productData.Price)
	}
	if productData.Url != "" {
		b.WriteString("\n" + productData.Url)
	}
	return b.String()
}

func (cs *chatService) loadProductData(ctx context.Context, hit retrieval.Hit) (*dto.ProductData, error) {
	productId, err := uuid.Parse(hit.ID)
	if err != nil {
		return nil, fmt.Errorf("bad product id %q: %w", hit.ID, err)
	}
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: productId})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s disappeared from catalog", hit.ID)
	}
	return toProductData(product), nil
}

// contactManager hands the conversation to a human: contact block to the
// user, lead notification to the manager, funnel criteria dropped.
func (cs *chatService) contactManager(session *store.Session) *dto.ChatResponse {
	criteria := cs.machine.Vocabulary().DescribeCriteria(session.Criteria)

	var recent []string
	for _, msg := range session.RecentHistory(6) {
		recent = append(recent, msg.Role+": "+msg.Content)
	}

	// Mail delivery must not block the reply.
	sessionId, source := session.ID, session.Source
	go func() {
		if err := cs.emailService.SendLeadNotification(sessionId, source, criteria, recent); err != nil {
			cs.logger.Warn("chat", "lead notification failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}()

	session.ResetFunnel()

	reply := fmt.Sprintf(constant.ManagerHandoffMessage, cs.manager.Phone, cs.manager.Email)
	if cs.manager.Hours != "" {
		reply += "\nЧасы работы: " + cs.manager.Hours
	}
	if cs.manager.Address != "" {
		reply += "\nАдрес: " + cs.manager.Address
	}

	return cs.recordReply(session, &dto.ChatResponse{
		Reply:   reply,
		Action:  constant.ActionContactManager,
		Buttons: navButtons(),
	})
}

// answerQuestion is the out-of-funnel path: ground the LLM on catalog
// fragments for the question, answer, then re-prompt the pending step so
// the funnel is never lost. Outside the funnel a close-enough top hit is
// attached as a product card.
func (cs *chatService) answerQuestion(ctx context.Context, session *store.Session, text string) (*dto.ChatResponse, error) {
	hits := cs.policy.SearchUnfiltered(ctx, text)

	var contextBlock strings.Builder
	for _, hit := range hits {
		if hit.Distance >= constant.RelevanceThreshold {
			continue
		}
		contextBlock.WriteString(hit.Text + "\n---\n")
	}
	if contextBlock.Len() == 0 {
		contextBlock.WriteString("(по запросу ничего не найдено)")
	}

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(constant.AdvisorSystemPrompt, contextBlock.String())},
	}
	for _, msg := range session.RecentHistory(constant.LLMHistoryWindow) {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	reply, err := cs.llmProvider.Chat(ctx, history)
	if err != nil {
		cs.logger.Error("chat", "llm answer failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return cs.recordReply(session, &dto.ChatResponse{
			Reply:   constant.ApologyMessage,
			Action:  constant.ActionAskQuestion,
			Buttons: cs.pendingButtons(session),
		}), nil
	}

	// Re-prompt the active step after answering, so a side question does
	// not derail the funnel.
	if step := cs.machine.CurrentStep(session); step != nil {
		return cs.recordReply(session, &dto.ChatResponse{
			Reply:   reply + "\n\n" + step.Prompt,
			Action:  constant.ActionAskQuestion,
			Buttons: cs.stepButtons(step),
		}), nil
	}

	if len(hits) > 0 && hits[0].Distance < constant.RelevanceThreshold {
		productData, loadErr := cs.loadProductData(ctx, hits[0])
		if loadErr == nil {
			return cs.recordReply(session, &dto.ChatResponse{
				Reply:       reply,
				Action:      constant.ActionShowProduct,
				ProductData: productData,
				Buttons:     navButtons(),
			}), nil
		}
		cs.logger.Error("chat", "failed to load product for answer", map[string]interface{}{
			"session_id": session.ID,
			"product_id": hits[0].ID,
			"error":      loadErr.Error(),
		})
	}

	return cs.recordReply(session, &dto.ChatResponse{
		Reply:   reply + "\n\n" + constant.FunnelRestartHint,
		Action:  constant.ActionAskQuestion,
		Buttons: navButtons(),
	}), nil
}

func (cs *chatService) recordReply(session *store.Session, response *dto.ChatResponse) *dto.ChatResponse {
	session.AppendHistory(store.RoleAssistant, response.Reply, constant.MaxStoredHistory)
	return response
}

func (cs *chatService) stepButtons(step *funnel.Step) []dto.ButtonOption {
	var buttons []dto.ButtonOption
	for _, opt := range step.Buttons() {
		payload := opt.Value
		if payload == "" {
			payload = opt.Label
		}
		buttons = append(buttons, dto.ButtonOption{Label: opt.Label, Payload: payload})
	}
	return append(buttons, navButtons()...)
}

func (cs *chatService) pendingButtons(session *store.Session) []dto.ButtonOption {
	if step := cs.machine.CurrentStep(session); step != nil {
		return cs.stepButtons(step)
	}
	return navButtons()
}

func navButtons() []dto.ButtonOption {
	return []dto.ButtonOption{
		{Label: "Назад", Payload: constant.SentinelBack},
		{Label: "Главное меню", Payload: constant.SentinelMainMenu},
	}
}

func isStartTrigger(lower string) bool {
	for _, trigger := range constant.StartFunnelTriggers {
		if lower == trigger {
			return true
		}
	}
	return false
}

func containsTrigger(lower string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

func toProductData(product *entity.Product) *dto.ProductData {
	return &dto.ProductData{
		Article:     product.Article,
		Name:        product.Name,
		Url:         product.Url,
		Price:       product.Price,
		OldPrice:    product.OldPrice,
		Category:    product.Category,
		Description: product.Description,
	}
}
