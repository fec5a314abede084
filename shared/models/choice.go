package models

// Chapter bounds offered by the client's chapter selector.
const (
	MinChapter     = 1
	MaxChapter     = 5
	DefaultChapter = MinChapter
)

// Effect score bounds.
const (
	MinEffect = 0.0
	MaxEffect = 100.0
)

// Choice - одна сюжетная развилка, сделанная игроком.
// Создаётся один раз при отправке и больше никогда не изменяется.
type Choice struct {
	ID              string  `json:"id"`
	EncryptedWeight string  `json:"encryptedWeight"` // Токен Codec, сырое число нигде не хранится
	Timestamp       int64   `json:"timestamp"`       // Unix seconds
	Player          string  `json:"player"`          // Адрес кошелька
	Chapter         int     `json:"chapter"`
	Description     string  `json:"description"`
	ButterflyEffect float64 `json:"butterflyEffect"` // [0,100], вычисляется один раз при отправке
}

// SubmitChoiceInput содержит пользовательский ввод для новой развилки.
// Weight - указатель, чтобы отличать "не передан" от нуля.
type SubmitChoiceInput struct {
	Chapter     int      `json:"chapter"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight"`
}
