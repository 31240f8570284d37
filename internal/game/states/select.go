package states

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/assets"
)

// ModelSelectState lets the user pick a model from the library catalog.
// The current choice is shown in the window title; up and down move the
// cursor and return loads the model and enters the posing state.
type ModelSelectState struct {
	ctx     *Context
	entries []assets.Entry
	cursor  int
}

// NewModelSelectState creates the model selection state.
func NewModelSelectState(ctx *Context) *ModelSelectState {
	return &ModelSelectState{ctx: ctx}
}

// Enter loads the catalog entries.
func (s *ModelSelectState) Enter() error {
	s.entries = s.ctx.Library.Entries()
	s.cursor = 0
	s.ctx.Log.Info("model select entered", zap.Int("models", len(s.entries)))
	s.updateTitle()
	return nil
}

// Exit implements State.
func (s *ModelSelectState) Exit() error {
	return nil
}

// Update implements State.
func (s *ModelSelectState) Update(dt float64) error {
	return nil
}

// Render draws the empty stage.
func (s *ModelSelectState) Render() error {
	return nil
}

// HandleInput moves the cursor and confirms the selection.
func (s *ModelSelectState) HandleInput(event sdl.Event) error {
	key, ok := event.(*sdl.KeyboardEvent)
	if !ok || key.Type != sdl.KEYDOWN {
		return nil
	}

	switch key.Keysym.Sym {
	case sdl.K_UP:
		s.move(-1)
	case sdl.K_DOWN:
		s.move(1)
	case sdl.K_RETURN:
		return s.confirm()
	}
	return nil
}

func (s *ModelSelectState) move(delta int) {
	if len(s.entries) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.entries)) % len(s.entries)
	s.updateTitle()
}

func (s *ModelSelectState) confirm() error {
	if len(s.entries) == 0 {
		return nil
	}
	entry := s.entries[s.cursor]

	g, err := s.ctx.Library.Load(entry.ID)
	if err != nil {
		// Stay on the menu; a broken document should not kill the app.
		s.ctx.Log.Error("failed to load model",
			zap.String("id", entry.ID), zap.Error(err))
		return nil
	}

	if err := s.ctx.Renderer.UploadGraph(g); err != nil {
		s.ctx.Log.Error("failed to upload model",
			zap.String("id", entry.ID), zap.Error(err))
		return nil
	}

	s.ctx.Engine.SetModel(g)
	s.ctx.Engine.RequestPlacement()

	s.ctx.Log.Info("model selected",
		zap.String("id", entry.ID), zap.String("name", entry.Name))

	s.ctx.Manager.Change(NewPosingState(s.ctx))
	return nil
}

func (s *ModelSelectState) updateTitle() {
	if s.ctx.Window == nil {
		return
	}
	if len(s.entries) == 0 {
		s.ctx.Window.SetTitle("vrmecanism - no models in catalog")
		return
	}
	e := s.entries[s.cursor]
	s.ctx.Window.SetTitle(fmt.Sprintf("vrmecanism - select model: %s (%d/%d)",
		e.Name, s.cursor+1, len(s.entries)))
}
