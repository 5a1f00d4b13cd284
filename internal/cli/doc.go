// Package cli implements eventctl, the operator command line for the event
// store. It talks to the database directly, so it works while the HTTP
// server is down.
//
// Commands:
//
//	delete <id>                                  delete an event, asking before cascading
//	attendance <series> <participant> <status>   set one participant's status on a whole series
//	sweep                                        run one archive pass now
//	token <user-id> [name]                       issue an API bearer token
//
// Without a command eventctl starts an interactive prompt accepting the
// same commands.
package cli
