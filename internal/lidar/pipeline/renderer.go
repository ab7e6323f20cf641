package pipeline

//go:generate mockgen -destination=../mocks/mock_pipeline.go -package=mocks github.com/banshee-data/simlidar/internal/lidar/pipeline Renderer,SnapshotSink

import (
	"errors"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// ErrWindowClosed is returned by Render when the viewer surface has been
// closed. The loop treats it as a normal exit.
var ErrWindowClosed = errors.New("render window closed")

// Renderer displays a point set. Register is called once, when the loop
// reaches its registration tick; Update every tick from then on; Render
// polls input and redraws.
type Renderer interface {
	Register(ps *lidar.PointSet) error
	Update(ps *lidar.PointSet) error
	Render() error
	Close() error
}
