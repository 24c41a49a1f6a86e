package store

import (
	"encoding/json"
	"fmt"

	"jobShop/internal/jobshop"
)

func marshalQueues(s *jobshop.Solution) (string, error) {
	queues := make([][][2]int, s.Machines())
	for m := range queues {
		queues[m] = make([][2]int, s.Len(m))
		for pos := range queues[m] {
			t := s.At(m, pos)
			queues[m][pos] = [2]int{t.Job, t.Op.Index}
		}
	}
	data, err := json.Marshal(queues)
	if err != nil {
		return "", fmt.Errorf("marshal queues: %w", err)
	}
	return string(data), nil
}

func unmarshalQueues(data string) ([][][2]int, error) {
	var queues [][][2]int
	if err := json.Unmarshal([]byte(data), &queues); err != nil {
		return nil, fmt.Errorf("unmarshal queues: %w", err)
	}
	return queues, nil
}
