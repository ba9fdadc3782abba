package signal

func (ctl *GatewayController) handlePing(
	conn *WsConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}
