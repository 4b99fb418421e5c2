// Package services contains HTTP clients for the external collaborators:
// the generation backend (poster, polaroid, couple and final videos, WhatsApp
// relay) and the mail surface (session-cookie delegated flow plus a direct
// Microsoft Graph sender for application credentials).
package services
