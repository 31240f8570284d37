package states

import (
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/assets"
	"github.com/banyapon/vrmecanism/internal/engine/camera"
	"github.com/banyapon/vrmecanism/internal/engine/interact"
	"github.com/banyapon/vrmecanism/internal/engine/render"
	"github.com/banyapon/vrmecanism/internal/engine/window"
	"github.com/banyapon/vrmecanism/internal/xr"
)

// Context bundles the shared subsystems states operate on.
type Context struct {
	Manager  *Manager
	Library  *assets.Library
	Engine   *interact.Engine
	Renderer *render.Renderer
	Camera   *camera.OrbitCamera
	Window   *window.Window
	Platform xr.Platform
	Log      *zap.Logger
}
