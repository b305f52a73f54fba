package player

import "errors"

var (
	// ErrNoVoiceChannel means the requesting user is not in a voice channel.
	ErrNoVoiceChannel = errors.New("you need to be in a voice channel")
	// ErrVoiceConnectFailed means joining the requester's voice channel failed.
	ErrVoiceConnectFailed = errors.New("failed to connect to voice channel")
	// ErrBusyWithSpeech means the speech component holds the guild's audio gate.
	ErrBusyWithSpeech = errors.New("voice connection is busy with speech")
	// ErrBusyWithMusic is the symmetric failure for the speech side.
	ErrBusyWithMusic = errors.New("voice connection is busy with music")
	// ErrTrackNotFound means a query could not be resolved to a playable track.
	ErrTrackNotFound = errors.New("no track found")
	// ErrNothingPlaying means skip was called with no current track.
	ErrNothingPlaying = errors.New("no track is currently playing")
	// ErrNothingToPauseOrResume means pause was called with nothing to act on.
	ErrNothingToPauseOrResume = errors.New("nothing to pause or resume")
	// ErrInvalidIndex means a queue position outside [1, len] was given.
	ErrInvalidIndex = errors.New("invalid queue position")
	// ErrNotConnected means leave was called without a voice session.
	ErrNotConnected = errors.New("not connected to a voice channel")
	// ErrPlaybackStartFailed is surfaced once the consecutive start-failure
	// ceiling is hit; individual failures are skipped silently.
	ErrPlaybackStartFailed = errors.New("playback failed to start")
)
