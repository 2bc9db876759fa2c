package intake

import "fmt"

type stagePanic struct {
	value any
}

func (p *stagePanic) Error() string {
	return fmt.Sprintf("intake: collaborator panic: %v", p.value)
}
