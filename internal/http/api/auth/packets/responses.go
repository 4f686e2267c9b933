package packets

import "github.com/Nixie-Tech-LLC/loopboard/internal/model"

type LoginResponse struct {
	Token    string         `json:"token"`
	Identity model.Identity `json:"identity"`
}
