package constant

const (
	// Actions the client renders differently: a plain question, a product
	// card, or the manager contact block.
	ActionAskQuestion    = "ask_question"
	ActionShowProduct    = "show_product"
	ActionContactManager = "contact_manager"

	// Control payloads sent by clients instead of free text. These never
	// reach the extractor or the LLM.
	SentinelMainMenu = "__main_menu__"
	SentinelBack     = "__back__"

	// Maximum cosine distance at which the top hit is still considered
	// relevant enough to show as a product card.
	RelevanceThreshold = 0.7

	// History caps: what we keep per session vs what we feed to the LLM.
	MaxStoredHistory = 50
	LLMHistoryWindow = 20
)

const (
	WelcomeMessage = "Здравствуйте! Я помогу подобрать вентиляционное оборудование. Давайте уточним несколько деталей."

	ApologyMessage = "Извините, сейчас не получается ответить. Попробуйте ещё раз чуть позже или свяжитесь с менеджером."

	ManagerHandoffMessage = "Передаю ваш запрос менеджеру. С вами свяжутся в ближайшее время.\n\nТелефон: %s\nEmail: %s"

	NoResultsMessage = "К сожалению, по вашему запросу ничего не нашлось. Попробуйте изменить параметры или свяжитесь с менеджером."

	RelaxedResultsPrefix = "Точного совпадения по всем параметрам нет, но вот близкий вариант:"

	FunnelRestartHint = "Чтобы начать подбор заново, напишите «подбор» или нажмите «Главное меню»."
)

// StartFunnelTriggers open the funnel when matched as a whole lowercased
// message and no funnel step is active. Mid-funnel they are ordinary text.
var StartFunnelTriggers = []string{
	"подбор",
	"начать",
	"старт",
	"start",
	"меню",
	"главное меню",
}

// ContactManagerTriggers hand the conversation to a human when found as a
// substring of the lowercased message.
var ContactManagerTriggers = []string{
	"менеджер",
	"оператор",
	"человек",
	"позвоните",
	"manager",
}

// AdvisorSystemPrompt frames out-of-funnel answers. The retrieved catalog
// fragments are substituted into the context block; the model must stay
// within them.
const AdvisorSystemPrompt = `Ты — консультант интернет-магазина вентиляционного оборудования «Завод ВРК».

Отвечай на вопросы покупателя коротко и по делу, только на основе контекста ниже.
Если в контексте нет ответа — честно скажи, что не знаешь, и предложи связаться с менеджером.
Не выдумывай характеристики, цены и артикулы.
Отвечай на русском языке.

Контекст каталога:
%s`
