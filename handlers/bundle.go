package handlers

// HandlerBundle aggregates the handler sets the route registrar wires up.
type HandlerBundle struct {
	Notification *NotificationHandler
	Files        *FileHandler
}
