package storage

import (
	"fmt"
	"strings"
)

// defaultBadWords seeds a guild's word list on first access so moderation
// works before any admin has configured it.
var defaultBadWords = []string{"curse", "swear", "offensive", "inappropriate", "rude"}

// GetBadWords returns the guild's bad-word list, seeding defaults on first use.
func (s *Storage) GetBadWords(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	if record.BadWords == nil {
		record.BadWords = append([]string(nil), defaultBadWords...)
		s.ds.Add(guildID, record)
	}
	return record.BadWords, nil
}

// AddBadWord adds word to the guild's list. Words are stored lowercased.
func (s *Storage) AddBadWord(guildID, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return fmt.Errorf("empty word")
	}

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if record.BadWords == nil {
		record.BadWords = append([]string(nil), defaultBadWords...)
	}

	for _, w := range record.BadWords {
		if w == word {
			return fmt.Errorf("word %q already in the list", word)
		}
	}

	record.BadWords = append(record.BadWords, word)
	s.ds.Add(guildID, record)
	return nil
}

// RemoveBadWord removes word from the guild's list.
func (s *Storage) RemoveBadWord(guildID, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return fmt.Errorf("empty word")
	}

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	for i, w := range record.BadWords {
		if w == word {
			record.BadWords = append(record.BadWords[:i], record.BadWords[i+1:]...)
			s.ds.Add(guildID, record)
			return nil
		}
	}
	return fmt.Errorf("word %q not in the list", word)
}
