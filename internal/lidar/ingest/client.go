package ingest

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// Client pushes frames to an ingest server.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. Without options the connection is unencrypted.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// FrameStream is an open PushFrames call.
type FrameStream struct {
	stream grpc.ClientStream
	sent   int
}

// PushFrames opens a stream carrying frames of the given kind.
func (c *Client) PushFrames(ctx context.Context, kind lidar.SensorKind) (*FrameStream, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, MetadataSensorKind, kind.String())
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], PushFramesMethod)
	if err != nil {
		return nil, fmt.Errorf("open frame stream: %w", err)
	}
	return &FrameStream{stream: stream}, nil
}

// Send sends one raw sensor buffer.
func (s *FrameStream) Send(raw []byte) error {
	if err := s.stream.SendMsg(wrapperspb.Bytes(raw)); err != nil {
		return err
	}
	s.sent++
	return nil
}

// Sent returns how many frames have been sent.
func (s *FrameStream) Sent() int { return s.sent }

// CloseAndRecv half-closes the stream and waits for the server to
// acknowledge it. Errors raised by the server, such as a sensor kind
// mismatch, surface here.
func (s *FrameStream) CloseAndRecv() error {
	if err := s.stream.CloseSend(); err != nil {
		return err
	}
	return s.stream.RecvMsg(new(emptypb.Empty))
}
