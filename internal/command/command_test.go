package command

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name  string
	admin bool
	runs  int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub" }
func (s *stubCommand) Group() string       { return "test" }
func (s *stubCommand) Category() string    { return "Test" }
func (s *stubCommand) RequireAdmin() bool  { return s.admin }
func (s *stubCommand) Run(ctx *SlashContext) error {
	s.runs++
	return nil
}

func resetRegistry() {
	registry = map[string]Command{}
}

func TestRegisterAndGet(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	cmd := &stubCommand{name: "ping"}
	Register(cmd)

	got, ok := Get("ping")
	require.True(t, ok)
	assert.Equal(t, "ping", got.Name())

	_, ok = Get("missing")
	assert.False(t, ok)
}

func TestRegisterReplacesSameName(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	first := &stubCommand{name: "ping"}
	second := &stubCommand{name: "ping"}
	Register(first)
	Register(second)

	got, ok := Get("ping")
	require.True(t, ok)
	require.NoError(t, got.Run(nil))
	assert.Equal(t, 0, first.runs)
	assert.Equal(t, 1, second.runs)
}

func TestAllSortedByName(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(&stubCommand{name: "zulu"})
	Register(&stubCommand{name: "alpha"})
	Register(&stubCommand{name: "mike"})

	all := All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name())
	assert.Equal(t, "mike", all[1].Name())
	assert.Equal(t, "zulu", all[2].Name())
}

func TestApplyWrapsOutermostFirst(t *testing.T) {
	var order []string
	mw := func(label string) Middleware {
		return func(next Command) Command {
			return &wrappedCommand{
				Command: next,
				wrap: func(ctx *SlashContext) error {
					order = append(order, label)
					return next.Run(ctx)
				},
			}
		}
	}

	cmd := &stubCommand{name: "ping"}
	wrapped := Apply(cmd, mw("outer"), mw("inner"))

	require.NoError(t, wrapped.Run(nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, cmd.runs)

	// the wrapper still reports the underlying command's identity
	assert.Equal(t, "ping", wrapped.Name())
	assert.Equal(t, "Test", wrapped.Category())
}

func TestWithAdminOnlyPassesThroughNonAdminCommands(t *testing.T) {
	cmd := &stubCommand{name: "ping", admin: false}
	wrapped := WithAdminOnly(cmd)

	require.NoError(t, wrapped.Run(nil))
	assert.Equal(t, 1, cmd.runs)
}

func TestStringAndIntOptions(t *testing.T) {
	ctx := &SlashContext{
		Event: &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{
				Type: discordgo.InteractionApplicationCommand,
				Data: discordgo.ApplicationCommandInteractionData{
					Name: "play",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Name: "input", Type: discordgo.ApplicationCommandOptionString, Value: "never gonna"},
						{Name: "position", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
					},
				},
			},
		},
	}

	assert.Equal(t, "never gonna", ctx.StringOption("input"))
	assert.Equal(t, int64(3), ctx.IntOption("position"))
	assert.Empty(t, ctx.StringOption("missing"))
	assert.Zero(t, ctx.IntOption("missing"))

	opts := ctx.Options()
	assert.Len(t, opts, 2)
	assert.Contains(t, opts, "input")
}
