package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/lwd-temp/Desktop-Ponies/gif"
)

func keepFrame(fd *gif.FrameData) (*gif.FrameData, error) {
	return fd, nil
}

func loopDescription(n int) string {
	if n == 0 {
		return "forever"
	}
	return strconv.Itoa(n)
}

func fatal(err error) {
	color.Red("%v", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: gifextract <file.gif>")
		os.Exit(2)
	}
	inputFile := os.Args[1]

	file, err := os.Open(inputFile)
	if err != nil {
		fatal(err)
	}
	defer file.Close()

	fmt.Print("Beginning extraction of gif frames\n\n")

	doc, err := gif.Decode(file, keepFrame, nil)
	if err != nil {
		color.Red("could not load this image: %v", err)
		os.Exit(1)
	}

	fmt.Printf("GIF width is: %v\n", doc.Width)
	fmt.Printf("GIF height is: %v\n", doc.Height)
	fmt.Printf("GIF loop count is: %v\n", loopDescription(doc.LoopCount))
	fmt.Printf("GIF total duration is: %v\n", doc.Duration)
	fmt.Printf("GIF frame count is: %v\n", len(doc.Frames))

	dirName := strings.TrimSuffix(filepath.Base(inputFile), ".gif")
	if err := os.MkdirAll(dirName, 0755); err != nil {
		fatal(err)
	}

	for i, frame := range doc.Frames {
		fileName := fmt.Sprintf("%s/%s-%d.png", dirName, dirName, i+1)
		if err := WriteToPNG(frame.Image, fileName); err != nil {
			fatal(err)
		}
	}

	color.Green("Extracted %d frames from gif successfully!", len(doc.Frames))
}
