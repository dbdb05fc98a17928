// Command framectl controls a running snekframe instance over its http api.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/matthewar/snekframe/api/client"
	"github.com/matthewar/snekframe/api/models"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: framectl [-addr url] <command> [args]

Commands:
  status                     show system info
  rescan                     rescan the photo library
  settings                   show current settings
  shuffle on|off             toggle shuffle
  interval <seconds>         set seconds per photo
  restart                    restart the slideshow
  stop                       stop the slideshow
  display on|off             turn the display on or off
  brightness <10-100>        set the backlight brightness
  shutdown                   shut the frame down (5s countdown)
  reboot                     reboot the frame (5s countdown)
  cancel                     cancel a pending shutdown or reboot
`)
	os.Exit(2)
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base url of the frame api")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	fc := client.NewFrameClient(*addr)

	var err error
	switch args[0] {
	case "status":
		err = showStatus(fc)
	case "rescan":
		err = rescan(fc)
	case "settings":
		err = showSettings(fc)
	case "shuffle":
		err = setShuffle(fc, args[1:])
	case "interval":
		err = setInterval(fc, args[1:])
	case "restart":
		err = fc.RestartSlideshow()
	case "stop":
		err = fc.StopSlideshow()
	case "display":
		err = setDisplay(fc, args[1:])
	case "brightness":
		err = setBrightness(fc, args[1:])
	case "shutdown":
		err = requestPower(fc, fc.Shutdown)
	case "reboot":
		err = requestPower(fc, fc.Reboot)
	case "cancel":
		err = fc.CancelPower()
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "framectl: %v\n", err)
		os.Exit(1)
	}
}

func showStatus(fc *client.FrameClient) error {
	info, err := fc.SystemInfo()
	if err != nil {
		return err
	}

	fmt.Printf("version:    %s (schema v%d)\n", info.Version, info.SchemaVersion)
	fmt.Printf("address:    %s\n", info.IPAddress)
	fmt.Printf("slideshow:  running=%t\n", info.SlideshowRunning)
	if info.Voltage.Warning() {
		fmt.Println("voltage:    LOW VOLTAGE DETECTED, check the power supply")
	} else {
		fmt.Println("voltage:    ok")
	}
	return nil
}

func rescan(fc *client.FrameClient) error {
	resp, err := fc.Rescan()
	if err != nil {
		return err
	}
	fmt.Printf("added %d, removed %d, library has %d photos in %d albums\n",
		resp.Added, resp.Removed, resp.NumPhotos, resp.NumAlbums)
	return nil
}

func showSettings(fc *client.FrameClient) error {
	settings, err := fc.GetSettings()
	if err != nil {
		return err
	}

	fmt.Printf("shuffle:    %t\n", settings.ShuffleEnabled)
	fmt.Printf("interval:   %ds\n", settings.TransitionSeconds)
	fmt.Printf("brightness: %d%%\n", settings.Brightness)
	fmt.Printf("sleep:      enabled=%t %s-%s\n", settings.SleepEnabled, settings.SleepStart, settings.SleepEnd)
	return nil
}

func setShuffle(fc *client.FrameClient, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("expected 'shuffle on' or 'shuffle off'")
	}

	settings, err := fc.GetSettings()
	if err != nil {
		return err
	}
	settings.ShuffleEnabled = args[0] == "on"
	return fc.UpdateSettings(settings)
}

func setInterval(fc *client.FrameClient, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected 'interval <seconds>'")
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return fmt.Errorf("interval must be a positive number of seconds")
	}

	settings, err := fc.GetSettings()
	if err != nil {
		return err
	}
	settings.TransitionSeconds = seconds
	return fc.UpdateSettings(settings)
}

func setDisplay(fc *client.FrameClient, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("expected 'display on' or 'display off'")
	}
	return fc.SetDisplay(args[0] == "on")
}

func setBrightness(fc *client.FrameClient, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected 'brightness <10-100>'")
	}
	brightness, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("brightness must be a number: %w", err)
	}
	return fc.SetBrightness(brightness)
}

func requestPower(fc *client.FrameClient, request func() (*models.PowerStatusResponse, error)) error {
	resp, err := request()
	if err != nil {
		return err
	}
	fmt.Printf("%s in %d seconds, run 'framectl cancel' to abort\n", resp.Action, resp.SecondsRemaining)
	return nil
}
