package matrix

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/crypto/cryptohelper"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	config "github.com/seyedibu8791/signal-relay/internal/config"
)

// InboundMessage is one text message delivered from the source room.
// It only lives until the relay task has processed it.
type InboundMessage struct {
	RoomID string
	Sender string
	Text   string
}

type MatrixClient struct {
	Config *config.MatrixConfig

	client       *mautrix.Client
	cryptoHelper *cryptohelper.CryptoHelper
	sourceRoom   id.RoomID
	targetRoom   id.RoomID
	startTime    time.Time
	inbound      chan<- *InboundMessage
	stopped      atomic.Bool
}

func (mc *MatrixClient) Login(ctx context.Context, inbound chan<- *InboundMessage) {
	mc.inbound = inbound
	mc.startTime = time.Now()

	var client *mautrix.Client
	var err error
	if mc.Config.AccessToken != "" {
		// pre-authenticated session, no password login required
		client, err = mautrix.NewClient(
			mc.Config.HomeServer, id.UserID(mc.Config.Username), mc.Config.AccessToken,
		)
	} else {
		client, err = mautrix.NewClient(mc.Config.HomeServer, "", "")
	}
	mc.client = client
	if err != nil {
		log.Fatalf("Invalid matrix config: %v", err)
	}
	syncer := client.Syncer.(*mautrix.DefaultSyncer)

	// listen for messages from the source room
	syncer.OnEventType(event.EventMessage, mc.handleMessage)

	// accept room invites
	syncer.OnEventType(event.StateMember, func(ctx context.Context, evt *event.Event) {
		if evt.GetStateKey() == client.UserID.String() &&
			evt.Content.AsMember().Membership == event.MembershipInvite {
			_, err := client.JoinRoomByID(ctx, evt.RoomID)
			if err != nil {
				log.Errorf("Error joining room: %v", err)
			}
		}
	})

	if mc.Config.AccessToken == "" {
		// session login
		cryptoHelper, err := cryptohelper.NewCryptoHelper(client, []byte("signal-relay"), "session.db")
		mc.cryptoHelper = cryptoHelper
		if err != nil {
			log.Fatalf("Error setting up cryptohelper: %v", err)
		}
		cryptoHelper.LoginAs = &mautrix.ReqLogin{
			Type: mautrix.AuthTypePassword,
			Identifier: mautrix.UserIdentifier{
				Type: mautrix.IdentifierTypeUser,
				User: mc.Config.Username,
			},
			Password: mc.Config.Password,
		}
		if err = cryptoHelper.Init(ctx); err != nil {
			log.Fatalf("Error setting up cryptohelper: %v", err)
		}
		client.Crypto = cryptoHelper
	}

	mc.resolveRooms(ctx)
	log.Info("Logged into matrix")
}

// resolveRooms turns configured room aliases into room ids. Raw room ids
// pass through unchanged.
func (mc *MatrixClient) resolveRooms(ctx context.Context) {
	resolve := func(room config.Room) id.RoomID {
		if !room.IsAlias() {
			return id.RoomID(room.String())
		}
		resp, err := mc.client.ResolveAlias(ctx, id.RoomAlias(room.String()))
		if err != nil {
			log.Fatalf("Error resolving room alias %v: %v", room, err)
			return ""
		}
		log.Infof("Resolved room alias %v to %v", room, resp.RoomID)
		return resp.RoomID
	}
	mc.sourceRoom = resolve(mc.Config.SourceRoom)
	mc.targetRoom = resolve(mc.Config.TargetRoom)
}

func (mc *MatrixClient) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.RoomID != mc.sourceRoom {
		return
	}
	if evt.Sender == mc.client.UserID {
		return
	}
	if evt.Timestamp < mc.startTime.UnixMilli() {
		return // backlog from before startup
	}
	mc.inbound <- &InboundMessage{
		RoomID: evt.RoomID.String(),
		Sender: evt.Sender.String(),
		Text:   evt.Content.AsMessage().Body,
	}
}

// ValidateRooms checks that the account is a member of both configured
// rooms and returns the first missing one otherwise.
func (mc *MatrixClient) ValidateRooms(ctx context.Context) (bool, string) {
	resp, err := mc.client.JoinedRooms(ctx)
	if err != nil {
		log.Errorf("Error listing joined rooms: %v", err)
		return false, ""
	}
	joined := make(map[id.RoomID]struct{}, len(resp.JoinedRooms))
	for _, room := range resp.JoinedRooms {
		joined[room] = struct{}{}
	}
	for _, room := range []id.RoomID{mc.sourceRoom, mc.targetRoom} {
		if _, ok := joined[room]; !ok {
			return false, room.String()
		}
	}
	return true, ""
}

func (mc *MatrixClient) TargetRoom() string {
	return mc.targetRoom.String()
}

func (mc *MatrixClient) SendRoomMessage(ctx context.Context, roomId string, text string) (bool, string) {
	resp, err := mc.client.SendText(ctx, id.RoomID(roomId), text)
	if err != nil {
		log.Errorf("Error sending message to matrix: %v", err)
		return false, ""
	}
	return true, resp.EventID.String()
}

// CheckConnection performs a lightweight whoami round trip. It sends no
// room traffic.
func (mc *MatrixClient) CheckConnection(ctx context.Context) error {
	_, err := mc.client.Whoami(ctx)
	return err
}

// Sync runs the mautrix sync loop, reconnecting with exponential
// backoff on errors until the client is stopped.
func (mc *MatrixClient) Sync(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxInterval = 5 * time.Minute
	policy.MaxElapsedTime = 0
	for {
		started := time.Now()
		err := mc.client.Sync()
		if mc.stopped.Load() || ctx.Err() != nil {
			return
		}
		if time.Since(started) > time.Minute {
			policy.Reset()
		}
		wait := policy.NextBackOff()
		log.Errorf("Matrix sync failed, retrying in %v: %v", wait, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (mc *MatrixClient) Stop() {
	mc.stopped.Store(true)
	mc.client.StopSync()
	if mc.cryptoHelper != nil {
		if err := mc.cryptoHelper.Close(); err != nil {
			log.Errorf("Error closing cryptohelper: %v", err)
		}
	}
	log.Info("Stopped matrix sync")
}
