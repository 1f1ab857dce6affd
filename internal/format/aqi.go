package format

import (
	"errors"
	"fmt"
)

// ErrUnknownAQI is returned for levels outside 1..5
var ErrUnknownAQI = errors.New("unknown AQI level")

type AqiDescriptor struct {
	Level   string
	Message string
}

var aqiText = map[int]AqiDescriptor{
	1: {
		Level:   "Bom",
		Message: "A qualidade do ar é considerada satisfatória, e a poluição do ar representa pouco ou nenhum risco.",
	},
	2: {
		Level:   "Razoável",
		Message: "A qualidade do ar é aceitável; no entanto, para alguns poluentes, pode haver uma preocupação moderada de saúde para um número muito pequeno de pessoas que são incomumente sensíveis à poluição do ar.",
	},
	3: {
		Level:   "Moderado",
		Message: "Membros de grupos sensíveis podem sentir efeitos na saúde. O público em geral provavelmente não será afetado.",
	},
	4: {
		Level:   "Ruim",
		Message: "Todos podem começar a sentir efeitos na saúde; membros de grupos sensíveis podem sentir efeitos mais sérios.",
	},
	5: {
		Level:   "Muito Ruim",
		Message: "Alertas de condições de emergência. Toda a população pode ser mais afetada.",
	},
}

// AQI looks up the descriptor for an air quality index level
func AQI(level int) (AqiDescriptor, error) {
	d, ok := aqiText[level]
	if !ok {
		return AqiDescriptor{}, fmt.Errorf("%w: %d", ErrUnknownAQI, level)
	}
	return d, nil
}
