// Package tui is the interactive wall editor built on Bubble Tea.
//
// The editor draws the wall as a grid of coloured terminal blocks. Each
// block takes the average colour of its cell in the composed wall image,
// so the photo shows through, and lit LEDs are blended over it. Clicking
// a block, or moving the cursor and pressing space, toggles its LED.
//
// Screens:
//
//   - Grid: the wall itself, with a toast line for notifications
//   - Menu: new/load/save wall, background image, new/load/save problem
//     and, when discovery is enabled, finding walls on the network
//   - Properties: wall name, problem name and server URL
//   - Pickers: wall, problem and discovered-server lists
//
// All state lives in a wall.Manager; the model only keeps what the screens
// need (cursor, dialog inputs, the last sampled colours). Server calls run
// as tea.Cmds and report back through messages. When a Watcher is given,
// the model follows the bound server's websocket feed and restarts it when
// the gateway is rebound.
package tui
