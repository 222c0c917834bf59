package game

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"slices"
	"sync"

	"github.com/sanketnaik99/trivia-sub000/internal"
	"github.com/sanketnaik99/trivia-sub000/internal/store"
)

// =============================================================================
// QUESTION PROVIDER
// =============================================================================

var ErrNoQuestions = errors.New("no questions available for this room")

// QuestionBank holds the question catalog in memory. It is loaded from the
// store at startup; per-room used-id history lives on the room itself.
type QuestionBank struct {
	mu        sync.RWMutex
	questions []internal.Question
}

func NewQuestionBank(questions []internal.Question) *QuestionBank {
	return &QuestionBank{questions: questions}
}

// LoadQuestionBank pulls the full catalog out of the store.
func LoadQuestionBank(ctx context.Context, st store.Store) (*QuestionBank, error) {
	questions, err := st.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[LoadQuestionBank] loaded %d questions", len(questions))
	return NewQuestionBank(questions), nil
}

// CategoryCount reports how many questions exist for a category.
func (b *QuestionBank) CategoryCount(category string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, q := range b.questions {
		if q.Category == category {
			count++
		}
	}
	return count
}

// Select picks a random not-yet-used question for the room, honoring the
// room's category filter. When every candidate has been used, the room's
// history is cleared and reuse begins. Returns ErrNoQuestions only when the
// category itself is empty. Caller holds room.Mu; the chosen id is appended
// to room.UsedQuestionIDs.
func (b *QuestionBank) Select(room *internal.Room) (*internal.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	candidates := b.eligible(room, true)
	if len(candidates) == 0 {
		// Pool exhausted: allow reuse against the full category-filtered set
		candidates = b.eligible(room, false)
		if len(candidates) == 0 {
			return nil, ErrNoQuestions
		}
		log.Printf("[QuestionBank.Select] room %s exhausted its pool, resetting history", room.Code)
		room.UsedQuestionIDs = room.UsedQuestionIDs[:0]
	}

	chosen := candidates[rand.Intn(len(candidates))]
	room.UsedQuestionIDs = append(room.UsedQuestionIDs, chosen.ID)

	q := chosen
	return &q, nil
}

func (b *QuestionBank) eligible(room *internal.Room, excludeUsed bool) []internal.Question {
	out := make([]internal.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if room.SelectedCategory != nil && q.Category != *room.SelectedCategory {
			continue
		}
		if excludeUsed && slices.Contains(room.UsedQuestionIDs, q.ID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// FindQuestion returns the question with the given id, if still in the bank.
func (b *QuestionBank) FindQuestion(id string) *internal.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, q := range b.questions {
		if q.ID == id {
			qq := q
			return &qq
		}
	}
	return nil
}
