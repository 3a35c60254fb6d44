package updtemplar

import (
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// Value — результат вычисления выражения.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

func textValue(s string) Value { return Value{Text: s} }

// numberValue хранит число и его текстовое представление с заданной точностью (-1 — минимальной).
func numberValue(v float64, prec int) Value {
	return Value{Text: strconv.FormatFloat(v, 'f', prec, 64), Number: v, Numeric: true}
}

func (v Value) String() string { return v.Text }

// Scope — контекст вычисления: документ и, во втором проходе, текущая позиция.
type Scope struct {
	Doc   *DocumentContext
	Item  *LineItem
	Index int // 0-based номер позиции
}

// RuleKind задаёт приоритет группы правил; меньшее значение проверяется раньше.
type RuleKind int

const (
	RuleExact RuleKind = iota + 1
	RulePrefix
	RuleCombination
	RuleLineItem
	RulePlaceholder
)

func (k RuleKind) String() string {
	switch k {
	case RuleExact:
		return "exact"
	case RulePrefix:
		return "prefix"
	case RuleCombination:
		return "combination"
	case RuleLineItem:
		return "line-item"
	case RulePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Rule — пара «предикат + обработчик». Сработавший предикат завершает поиск,
// даже если обработчик вернул false (значение откладывается до следующей фазы).
type Rule struct {
	Name    string
	Kind    RuleKind
	Match   func(body string) bool
	Resolve func(body string, s Scope) (Value, bool)
}

// Resolver вычисляет выражения по упорядоченной таблице правил. Не хранит
// изменяемого состояния и безопасен для повторных вызовов.
type Resolver struct {
	rules []Rule
	log   zerolog.Logger
}

// NewResolver собирает встроенные правила и дополнительные правила из настроек.
func NewResolver(o Options) *Resolver {
	rules := builtinRules(o)
	rules = append(rules, o.Rules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Kind < rules[j].Kind })
	return &Resolver{rules: rules, log: o.logger()}
}

// Resolve возвращает значение выражения ${...} или false, если ни одно правило
// не дало результата.
func (r *Resolver) Resolve(expr string, s Scope) (Value, bool) {
	body := exprBody(expr)
	for _, rule := range r.rules {
		if !rule.Match(body) {
			continue
		}
		v, ok := rule.Resolve(body, s)
		r.log.Trace().Str("expr", body).Str("rule", rule.Name).Stringer("kind", rule.Kind).Bool("resolved", ok).Msg("Правило выражения")
		return v, ok
	}
	return Value{}, false
}

// Rules возвращает копию таблицы правил в порядке проверки.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
