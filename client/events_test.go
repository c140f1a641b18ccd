package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"tasktracker/broker"
	"tasktracker/models"
	"tasktracker/routes"
	"tasktracker/services"
	"tasktracker/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchEvents_ReceivesTaskEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutils.SetupSQLiteDB(t)
	localBroker := broker.NewLocalBroker()
	consumer := localBroker.Subscribe(broker.TaskEventsSubject)

	dispatcher := services.NewEventHandlerService(db, localBroker, 10*time.Millisecond, nil)
	wsService := services.NewWebSocketService(consumer, nil, nil)
	dispatcher.Start()
	wsService.Start()

	router := gin.New()
	api := router.Group("/api")
	routes.RegisterTaskRoutes(api, db, &services.TaskService{})
	routes.RegisterWebSocketRoutes(api, wsService)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		dispatcher.Stop()
		wsService.Stop()
		consumer.Close()
		localBroker.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := WatchEvents(ctx, server.URL, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return wsService.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = NewAPIClient(server.URL, "", 5*time.Second).CreateTask(ctx, models.TaskInput{Title: "Live"})
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, string(broker.TaskCreated), event)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestWatchEvents_DialFailure(t *testing.T) {
	_, err := WatchEvents(context.Background(), "http://127.0.0.1:1", "")
	assert.ErrorIs(t, err, ErrTransport)
}
