package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
)

const DispatcherWorkersCount = 5

// SheetSubscriptions maps canonical cell labels to webhook URLs.
type SheetSubscriptions map[string]string

type ChangePayload struct {
	CellId string `json:"cell_id"`
	Value  string `json:"value"`
	Result string `json:"result"`
}

type ChangeSendCommand struct {
	Webhook string
	Payload ChangePayload
}

// ChangeDispatcher pushes cell change notifications to subscribed webhooks
// through a pool of sender workers.
type ChangeDispatcher struct {
	mu            sync.RWMutex
	queue         chan ChangeSendCommand
	subscriptions map[string]SheetSubscriptions
}

func NewChangeDispatcher() *ChangeDispatcher {
	return &ChangeDispatcher{
		queue:         make(chan ChangeSendCommand, 20),
		subscriptions: map[string]SheetSubscriptions{},
	}
}

func canonicalSheetId(sheetId string) string {
	return strings.ToLower(sheetId)
}

// Subscribe registers a webhook for a cell; an empty URL removes the
// subscription.
func (dispatcher *ChangeDispatcher) Subscribe(canonicalSheetId string, canonicalCellId string, webhookUrl string) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	if _, ok := dispatcher.subscriptions[canonicalSheetId]; !ok {
		dispatcher.subscriptions[canonicalSheetId] = SheetSubscriptions{}
	}

	if webhookUrl == "" {
		delete(dispatcher.subscriptions[canonicalSheetId], canonicalCellId)
	} else {
		dispatcher.subscriptions[canonicalSheetId][canonicalCellId] = webhookUrl
	}
}

func (dispatcher *ChangeDispatcher) WebhookUrl(canonicalSheetId string, canonicalCellId string) string {
	dispatcher.mu.RLock()
	defer dispatcher.mu.RUnlock()

	return dispatcher.subscriptions[canonicalSheetId][canonicalCellId]
}

func (dispatcher *ChangeDispatcher) HasSubscriptions(canonicalSheetId string) bool {
	dispatcher.mu.RLock()
	defer dispatcher.mu.RUnlock()

	return len(dispatcher.subscriptions[canonicalSheetId]) > 0
}

// Notify enqueues a send for every subscribed cell present in cells.
func (dispatcher *ChangeDispatcher) Notify(canonicalSheetId string, cells map[string]CellResponse) {
	dispatcher.mu.RLock()
	subscribed := dispatcher.subscriptions[canonicalSheetId]
	commands := make([]ChangeSendCommand, 0, len(subscribed))
	for cellId, webhook := range subscribed {
		if cell, ok := cells[cellId]; ok {
			commands = append(commands, ChangeSendCommand{
				Webhook: webhook,
				Payload: ChangePayload{CellId: cellId, Value: cell.Value, Result: cell.Result},
			})
		}
	}
	dispatcher.mu.RUnlock()

	if len(commands) == 0 {
		return
	}

	go func() {
		for _, command := range commands {
			dispatcher.queue <- command
		}
	}()
}

func (dispatcher *ChangeDispatcher) Start() {
	for i := 0; i < DispatcherWorkersCount; i++ {
		go dispatcher.runSenderWorker()
	}
}

func (dispatcher *ChangeDispatcher) Close() {
	close(dispatcher.queue)
}

func (dispatcher *ChangeDispatcher) runSenderWorker() {
	client := &http.Client{
		Timeout: time.Second * 5,
	}

	for command := range dispatcher.queue {
		payload, _ := json.Marshal(command.Payload)
		response, err := client.Post(command.Webhook, "application/json", bytes.NewBuffer(payload))

		if err != nil {
			fmt.Printf("Webhook send error: %s\n", err)
		} else if response.StatusCode >= 300 {
			fmt.Printf("Unexpected webhook response HTTP status: %s\n", response.Status)
		}
	}
}
