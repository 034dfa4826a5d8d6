/*
Copyright © 2020 the EnPrep authors.
This file is part of EnPrep.

EnPrep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnPrep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnPrep.  If not, see <http://www.gnu.org/licenses/>.
*/

package enprep

import "github.com/sirupsen/logrus"

// CheckMaximumCap validates the capacity ceiling of c. A ceiling that is
// smaller than the installed capacity, or that is zero, is discarded with
// a warning. An asset without a ceiling gets an empty one.
func CheckMaximumCap(group, id string, c CostedAsset, log logrus.FieldLogger) {
	a := c.costed()
	if a.MaximumCap == nil {
		a.MaximumCap = &MaxCap{Unit: a.Unit}
		return
	}
	if a.MaximumCap.Value == nil {
		return
	}
	log = log.WithFields(logrus.Fields{"group": group, "asset": id})
	var installed float64
	if a.InstalledCap != nil {
		installed = a.InstalledCap.Value
	}
	switch max := *a.MaximumCap.Value; {
	case max < installed:
		log.Warnf("The stated maximumCap (%g) is smaller than the installedCap (%g). "+
			"For this simulation, the maximumCap will be disregarded.", max, installed)
		a.MaximumCap.Value = nil
	case max == 0:
		log.Warn("The stated maximumCap of zero is invalid. " +
			"For this simulation, the maximumCap will be disregarded.")
		a.MaximumCap.Value = nil
	}
}
