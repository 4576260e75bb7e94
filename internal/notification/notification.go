/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package notification relays system errors to the configured channels. Used
// for events an operator should hear about, notably a remote ledger call
// that had to fall back to local state.
package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/internal/request"
)

// SlackNotification sends an error message to the configured Slack webhook.
func SlackNotification(err error) {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From ReceivAI 🐞",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		log.Println(err)
		return
	}

	req, err := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		log.Println(err)
		return
	}

	var response map[string]interface{}
	_, err = request.Call(req, &response)
	if err != nil {
		log.Println(err)
	}
}

// WebhookNotification posts the error as a JSON document to the generic
// error webhook, for operators who aggregate somewhere other than Slack.
func WebhookNotification(err error) {
	conf, cErr := config.Fetch()
	if cErr != nil {
		log.Println(cErr)
		return
	}

	payload, pErr := request.ToJsonReq(map[string]string{
		"source": conf.ProjectName,
		"error":  err.Error(),
		"time":   time.Now().Format(time.RFC3339),
	})
	if pErr != nil {
		log.Println(pErr)
		return
	}

	req, rErr := http.NewRequest("POST", conf.Notification.Webhook.Url, payload)
	if rErr != nil {
		log.Println(rErr)
		return
	}

	var response map[string]interface{}
	_, cErr = request.Call(req, &response)
	if cErr != nil {
		log.Println(cErr)
	}
}

// NotifyError logs a system error and fans it out to every configured
// channel. Delivery runs on a goroutine so callers never block on a slow
// webhook.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			SlackNotification(systemError)
		}
		if conf.Notification.Webhook.Url != "" {
			WebhookNotification(systemError)
		}
	}(systemError)
}
