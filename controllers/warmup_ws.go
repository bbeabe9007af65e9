package controller

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"mailramp/config"
	"mailramp/models"
)

type warmupProgressFrame struct {
	SenderID   uint    `json:"sender_id"`
	Enabled    bool    `json:"enabled"`
	Day        int     `json:"day"`
	SentToday  int     `json:"sent_today"`
	Target     int     `json:"target"`
	Reputation float64 `json:"reputation"`
	Status     string  `json:"status"` // running, stopped, completed
}

// HandleWarmupProgressWS streams live warmup progress for one sender.
// The client opens with {"sender_id": N, "action": "watch"} and receives
// a frame every few seconds until warmup stops or the socket closes.
func HandleWarmupProgressWS(c *websocket.Conn) {
	defer c.Close()

	var input struct {
		SenderID uint   `json:"sender_id"`
		Action   string `json:"action"`
	}

	if err := c.ReadJSON(&input); err != nil {
		log.Printf("Error reading JSON: %v", err)
		return
	}

	if input.Action != "watch" || input.SenderID == 0 {
		return
	}

	for {
		frame, done := warmupFrameFor(input.SenderID)
		if err := c.WriteJSON(frame); err != nil {
			log.Printf("Error writing JSON: %v", err)
			return
		}
		if done {
			return
		}
		time.Sleep(5 * time.Second)
	}
}

func warmupFrameFor(senderID uint) (warmupProgressFrame, bool) {
	frame := warmupProgressFrame{SenderID: senderID, Status: "stopped"}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return frame, true
	}

	frame.Enabled = sender.WarmupEnabled
	if sender.WarmupDoneAt != nil {
		frame.Status = "completed"
	} else if sender.WarmupEnabled {
		frame.Status = "running"
	}

	var day models.WarmupDay
	err := config.DB.Where("sender_id = ? AND completed = ?", senderID, false).
		Order("day ASC").
		First(&day).Error
	if err == nil {
		frame.Day = day.Day
		frame.SentToday = day.SentToday
		frame.Target = day.TargetVolume
	}

	var stat models.WarmupStat
	if err := config.DB.Where("sender_id = ?", senderID).
		Order("date DESC").
		First(&stat).Error; err == nil {
		frame.Reputation = stat.Reputation
	}

	done := !sender.WarmupEnabled
	return frame, done
}
