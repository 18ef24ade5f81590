package matrix

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/seyedibu8791/signal-relay/internal/config"
)

type MatrixHandler struct {
	Config *config.MatrixConfig
	client *MatrixClient
	ctx    context.Context
}

func (mh *MatrixHandler) Setup(ctx context.Context, inbound chan<- *InboundMessage) {
	mh.ctx = ctx
	mh.client = &MatrixClient{Config: mh.Config}
	mh.client.Login(ctx, inbound)
	go mh.client.Sync(ctx)
	mh.waitForRoomJoins()
}

func (mh *MatrixHandler) waitForRoomJoins() {
	for {
		ok, missing := mh.client.ValidateRooms(mh.ctx)
		if ok {
			break
		}
		if missing == "" {
			missing = "unknown"
		}
		log.Warnf("Not a member of configured room %v - please invite, retrying in 20s...", missing)
		time.Sleep(time.Second * 20)
	}
	log.Infof(
		"Relaying from %v to %v",
		mh.Config.SourceRoom, mh.Config.TargetRoom,
	)
}

func (mh *MatrixHandler) Client() *MatrixClient {
	return mh.client
}

func (mh *MatrixHandler) Stop() {
	mh.client.Stop()
}
