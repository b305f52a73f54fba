package storage

// SetGreetChannel pins greeting messages for a guild to a specific channel.
// An empty ID clears the override and falls back to keyword matching.
func (s *Storage) SetGreetChannel(guildID, channelID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.GreetChannelID = channelID
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) GetGreetChannel(guildID string) (string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.GreetChannelID, nil
}
