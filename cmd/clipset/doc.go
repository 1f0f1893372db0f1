// Command clipset builds paired image/audio datasets from lists of online
// video clips.
//
// The build command runs the whole pipeline: fetch every row of the input
// table, sample a frame and an audio slice at each row's offset, and move
// the results into images/{label}/ and sounds/{label}/ under the dataset
// directory. The fetch, partition, cleanup and remove-originals commands run
// single stages; runs and status inspect past runs and the environment.
package main
