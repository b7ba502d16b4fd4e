package workouts

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
)

const flashSessionName = "workoutlog-flash"

func init() {
	// session flashes are kept as []interface{} inside the cookie
	gob.Register([]interface{}{})
}

type MessageKind int

const (
	MessageWorkoutLogged MessageKind = iota + 1
	MessageWorkoutDeleted
	MessageGoalUpdated
	MessageMissingFields
	MessageInvalidDuration
	MessageInvalidGoal
	MessageInternalError
)

var messageTexts = map[MessageKind]string{
	MessageWorkoutLogged:   "Workout logged.",
	MessageWorkoutDeleted:  "Workout deleted.",
	MessageGoalUpdated:     "Goal updated.",
	MessageMissingFields:   "Workout type and date are required.",
	MessageInvalidDuration: "Duration must be a whole number of minutes, between 1 and 1440.",
	MessageInvalidGoal:     "Goal must be a positive whole number of minutes.",
	MessageInternalError:   "Something went wrong, please try again.",
}

func (k MessageKind) String() string {
	if text, ok := messageTexts[k]; ok {
		return text
	}
	return "unknown message"
}

func (k MessageKind) IsError() bool {
	switch k {
	case MessageWorkoutLogged, MessageWorkoutDeleted, MessageGoalUpdated:
		return false
	}
	return true
}

type flashMessage struct {
	Text  string
	Error bool
}

type flasher struct {
	store sessions.Store
}

func (f *flasher) add(w http.ResponseWriter, r *http.Request, kind MessageKind) {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		// a broken cookie yields a fresh session, keep going
		log.Debugf("get flash session: %s", err)
	}
	session.AddFlash(int(kind))
	if err := session.Save(r, w); err != nil {
		log.Errorf("save flash session: %s", err)
	}
}

// pop returns and clears the pending messages. Must be called before the response body is written.
func (f *flasher) pop(w http.ResponseWriter, r *http.Request) []flashMessage {
	session, err := f.store.Get(r, flashSessionName)
	if err != nil {
		log.Debugf("get flash session: %s", err)
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		log.Errorf("save flash session: %s", err)
	}

	messages := make([]flashMessage, 0, len(flashes))
	for _, flash := range flashes {
		kindInt, ok := flash.(int)
		if !ok {
			continue
		}
		kind := MessageKind(kindInt)
		messages = append(messages, flashMessage{
			Text:  kind.String(),
			Error: kind.IsError(),
		})
	}
	return messages
}
